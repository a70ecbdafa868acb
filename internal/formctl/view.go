package formctl

import "time"

// Element ids and selectors the controller binds to.
const (
	FileInputID    = "file"
	UploadFormID   = "uploadForm"
	UploadButtonID = "uploadBtn"
	DataFormID     = "dataForm"
	TooltipMarker  = `[data-bs-toggle="tooltip"]`
	MainContainer  = "main .container"
	BusyClass      = "btn-loading"
)

// Label is the content of a button: an optional icon followed by text.
type Label struct {
	Icon string
	Text string
}

// FileInput is a bound file-picker element.
type FileInput interface {
	// Selected returns the first chosen file, if any.
	Selected() (FileInfo, bool)
	Clear()
	OnChange(func())
}

// SubmitEvent lets a submit handler cancel the browser's default action.
type SubmitEvent interface {
	PreventDefault()
}

// Form is a bound form element.
type Form interface {
	OnSubmit(func(SubmitEvent))
	// SubmitButton finds the form's button[type=submit].
	SubmitButton() (Button, bool)
}

// Button is a bound button element.
type Button interface {
	SetLabel(Label)
	// SetBusy disables the button, adds BusyClass and replaces its label.
	SetBusy(text string)
}

// AlertHandle refers to a banner that was inserted into the document.
type AlertHandle interface {
	// Attached reports whether the banner is still in the document.
	Attached() bool
	// Close dismisses the banner through the widget library.
	Close()
}

// AlertHost owns the banners of a document.
type AlertHost interface {
	// Alerts lists the banners currently displayed.
	Alerts() []AlertHandle
	// RemoveAlerts drops every displayed banner immediately.
	RemoveAlerts()
	// InsertAlert puts the banner first in the main container. It reports
	// false when there is no main container.
	InsertAlert(Banner) (AlertHandle, bool)
}

// IconRenderer turns icon placeholders into glyphs.
type IconRenderer interface {
	Replace()
}

// TooltipTrigger is an element marked for tooltip behaviour.
type TooltipTrigger interface {
	Title() string
}

// TooltipProvider attaches hover/focus tooltips.
type TooltipProvider interface {
	Attach(TooltipTrigger)
}

// Scheduler runs f after d. There is no cancellation.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Document is the page the controller is mounted on.
type Document interface {
	AlertHost
	FileInput(id string) (FileInput, bool)
	Form(id string) (Form, bool)
	Button(id string) (Button, bool)
	TooltipTriggers() []TooltipTrigger
}

// RealTime schedules with time.AfterFunc.
type RealTime struct{}

func (RealTime) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
