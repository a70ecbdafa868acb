package formctl

// Controller mounts the upload form behaviour on a Document.
type Controller struct {
	Doc      Document
	Icons    IconRenderer
	Tooltips TooltipProvider
	Timer    Scheduler
}

// New returns a controller using real timers. Nil icons or tooltips disable
// those features.
func New(doc Document, icons IconRenderer, tooltips TooltipProvider) *Controller {
	return &Controller{Doc: doc, Icons: icons, Tooltips: tooltips, Timer: RealTime{}}
}

// Init wires every feature and schedules the page-wide banner cleanup.
func (c *Controller) Init() {
	c.InitFileUpload()
	c.InitFormValidation()
	c.InitTooltips()

	c.Timer.AfterFunc(AutoDismissDelay, c.DismissAll)
}

// DismissAll closes every banner still in the document.
func (c *Controller) DismissAll() {
	for _, a := range c.Doc.Alerts() {
		a.Close()
	}
}

// InitFileUpload attaches the file guard and the submission interceptor.
// Nothing is attached unless the input, the form and the button all exist.
func (c *Controller) InitFileUpload() {
	input, ok := c.Doc.FileInput(FileInputID)
	if !ok {
		return
	}
	form, ok := c.Doc.Form(UploadFormID)
	if !ok {
		return
	}
	btn, ok := c.Doc.Button(UploadButtonID)
	if !ok {
		return
	}

	input.OnChange(func() {
		c.applySelection(input, btn, EvaluateSelection(selected(input)))
	})

	form.OnSubmit(func(ev SubmitEvent) {
		out := EvaluateSubmit(selected(input))
		if !out.Allow {
			ev.PreventDefault()
			c.ShowAlert(out.Alert.Message, out.Alert.Severity)
			return
		}
		btn.SetBusy(out.BusyLabel)
		c.ShowAlert(out.Alert.Message, out.Alert.Severity)
	})
}

func (c *Controller) applySelection(input FileInput, btn Button, out SelectionOutcome) {
	if out.Alert != nil {
		c.ShowAlert(out.Alert.Message, out.Alert.Severity)
	}
	if out.Clear {
		input.Clear()
	}
	if out.Label != nil {
		btn.SetLabel(*out.Label)
		c.replaceIcons()
	}
}

// InitFormValidation marks the data form's submit button busy on submit.
func (c *Controller) InitFormValidation() {
	form, ok := c.Doc.Form(DataFormID)
	if !ok {
		return
	}
	form.OnSubmit(func(SubmitEvent) {
		if btn, ok := form.SubmitButton(); ok {
			btn.SetBusy(LabelBusy)
		}
	})
}

// InitTooltips attaches a tooltip to every marked element.
func (c *Controller) InitTooltips() {
	if c.Tooltips == nil {
		return
	}
	for _, t := range c.Doc.TooltipTriggers() {
		c.Tooltips.Attach(t)
	}
}

// ShowAlert replaces any displayed banner with a new one. An empty severity
// means informational. Without a main container nothing is shown.
func (c *Controller) ShowAlert(message string, severity Severity) {
	if severity == "" {
		severity = SeverityInfo
	}
	c.Doc.RemoveAlerts()

	h, ok := c.Doc.InsertAlert(Banner{Message: message, Severity: severity})
	if !ok {
		return
	}
	c.replaceIcons()

	c.Timer.AfterFunc(AutoDismissDelay, func() {
		if h.Attached() {
			h.Close()
		}
	})
}

func (c *Controller) replaceIcons() {
	if c.Icons != nil {
		c.Icons.Replace()
	}
}

func selected(input FileInput) *FileInfo {
	f, ok := input.Selected()
	if !ok {
		return nil
	}
	return &f
}
