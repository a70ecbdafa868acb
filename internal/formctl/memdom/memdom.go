// Package memdom is an in-memory Document for the form controller.
//
// It keeps just enough element state to observe what the controller does:
// button labels and busy flags, the file input selection, the banners in the
// main container and the tooltips attached. Timer callbacks may run on other
// goroutines, so all state is guarded by one mutex. Event handlers are always
// invoked without the lock held.
package memdom

import (
	"sync"

	"go-excelproc/internal/formctl"
)

// Options selects which elements exist on the page.
type Options struct {
	NoFileInput     bool
	NoUploadForm    bool
	NoUploadButton  bool
	NoDataForm      bool
	NoDataButton    bool
	NoMainContainer bool
	Tooltips        []string
}

// Document implements formctl.Document.
type Document struct {
	mu sync.Mutex

	fileInput *FileInput
	upload    *Form
	uploadBtn *Button
	data      *Form

	hasContainer bool
	alerts       []*Alert
	triggers     []*Trigger
}

// New builds the index page with every element present.
func New() *Document {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Document {
	d := &Document{hasContainer: !opts.NoMainContainer}
	if !opts.NoFileInput {
		d.fileInput = &FileInput{doc: d}
	}
	if !opts.NoUploadButton {
		d.uploadBtn = &Button{doc: d, label: formctl.Label{Icon: "upload", Text: formctl.LabelDefault}}
	}
	if !opts.NoUploadForm {
		d.upload = &Form{doc: d, button: d.uploadBtn}
	}
	if !opts.NoDataForm {
		f := &Form{doc: d}
		if !opts.NoDataButton {
			f.button = &Button{doc: d, label: formctl.Label{Text: "Enviar"}}
		}
		d.data = f
	}
	for _, title := range opts.Tooltips {
		d.triggers = append(d.triggers, &Trigger{title: title})
	}
	return d
}

func (d *Document) FileInput(id string) (formctl.FileInput, bool) {
	if id != formctl.FileInputID || d.fileInput == nil {
		return nil, false
	}
	return d.fileInput, true
}

func (d *Document) Form(id string) (formctl.Form, bool) {
	var f *Form
	switch id {
	case formctl.UploadFormID:
		f = d.upload
	case formctl.DataFormID:
		f = d.data
	}
	if f == nil {
		return nil, false
	}
	return f, true
}

func (d *Document) Button(id string) (formctl.Button, bool) {
	if id != formctl.UploadButtonID || d.uploadBtn == nil {
		return nil, false
	}
	return d.uploadBtn, true
}

func (d *Document) TooltipTriggers() []formctl.TooltipTrigger {
	out := make([]formctl.TooltipTrigger, len(d.triggers))
	for i, t := range d.triggers {
		out[i] = t
	}
	return out
}

func (d *Document) Alerts() []formctl.AlertHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]formctl.AlertHandle, len(d.alerts))
	for i, a := range d.alerts {
		out[i] = a
	}
	return out
}

func (d *Document) RemoveAlerts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.alerts {
		a.attached = false
	}
	d.alerts = nil
}

func (d *Document) InsertAlert(b formctl.Banner) (formctl.AlertHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasContainer {
		return nil, false
	}
	a := &Alert{doc: d, Banner: b, attached: true}
	d.alerts = append([]*Alert{a}, d.alerts...)
	return a, true
}

// Banners returns the banners currently displayed, first child first.
func (d *Document) Banners() []formctl.Banner {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]formctl.Banner, len(d.alerts))
	for i, a := range d.alerts {
		out[i] = a.Banner
	}
	return out
}

// UploadInput returns the file input, nil when absent.
func (d *Document) UploadInput() *FileInput { return d.fileInput }

// UploadButton returns the upload button, nil when absent.
func (d *Document) UploadButton() *Button { return d.uploadBtn }

// UploadForm returns the upload form, nil when absent.
func (d *Document) UploadForm() *Form { return d.upload }

// DataForm returns the data-entry form, nil when absent.
func (d *Document) DataForm() *Form { return d.data }

// Triggers returns the tooltip trigger elements.
func (d *Document) Triggers() []*Trigger { return d.triggers }

// FileInput is an <input type="file">.
type FileInput struct {
	doc      *Document
	file     *formctl.FileInfo
	onChange []func()
}

func (in *FileInput) Selected() (formctl.FileInfo, bool) {
	in.doc.mu.Lock()
	defer in.doc.mu.Unlock()
	if in.file == nil {
		return formctl.FileInfo{}, false
	}
	return *in.file, true
}

// Clear empties the selection without firing change, like setting value = "".
func (in *FileInput) Clear() {
	in.doc.mu.Lock()
	defer in.doc.mu.Unlock()
	in.file = nil
}

func (in *FileInput) OnChange(f func()) {
	in.doc.mu.Lock()
	defer in.doc.mu.Unlock()
	in.onChange = append(in.onChange, f)
}

// Choose simulates the user picking a file, or clearing the picker when f
// is nil, and fires the change handlers.
func (in *FileInput) Choose(f *formctl.FileInfo) {
	in.doc.mu.Lock()
	if f != nil {
		cp := *f
		in.file = &cp
	} else {
		in.file = nil
	}
	handlers := append([]func(){}, in.onChange...)
	in.doc.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// Form is a <form>.
type Form struct {
	doc      *Document
	button   *Button
	onSubmit []func(formctl.SubmitEvent)
}

func (f *Form) OnSubmit(h func(formctl.SubmitEvent)) {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	f.onSubmit = append(f.onSubmit, h)
}

func (f *Form) SubmitButton() (formctl.Button, bool) {
	if f.button == nil {
		return nil, false
	}
	return f.button, true
}

// Button returns the form's submit button, nil when absent.
func (f *Form) Button() *Button { return f.button }

// Submit fires the submit handlers and reports whether the browser would
// go on with the navigation.
func (f *Form) Submit() bool {
	f.doc.mu.Lock()
	handlers := append([]func(formctl.SubmitEvent){}, f.onSubmit...)
	f.doc.mu.Unlock()

	ev := &submitEvent{}
	for _, h := range handlers {
		h(ev)
	}
	return !ev.prevented
}

type submitEvent struct{ prevented bool }

func (e *submitEvent) PreventDefault() { e.prevented = true }

// Button is a <button>.
type Button struct {
	doc      *Document
	label    formctl.Label
	disabled bool
	busy     bool
}

func (b *Button) SetLabel(l formctl.Label) {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	b.label = l
}

func (b *Button) SetBusy(text string) {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	b.busy = true
	b.disabled = true
	b.label = formctl.Label{Text: text}
}

func (b *Button) Label() formctl.Label {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return b.label
}

func (b *Button) Disabled() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return b.disabled
}

// Busy reports whether the busy class was added.
func (b *Button) Busy() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return b.busy
}

// Alert is a banner element.
type Alert struct {
	doc      *Document
	Banner   formctl.Banner
	attached bool
	closes   int
}

func (a *Alert) Attached() bool {
	a.doc.mu.Lock()
	defer a.doc.mu.Unlock()
	return a.attached
}

// Close detaches the banner. Closing a detached banner is counted but has
// no other effect.
func (a *Alert) Close() {
	a.doc.mu.Lock()
	defer a.doc.mu.Unlock()
	a.closes++
	if !a.attached {
		return
	}
	a.attached = false
	for i, x := range a.doc.alerts {
		if x == a {
			a.doc.alerts = append(a.doc.alerts[:i], a.doc.alerts[i+1:]...)
			break
		}
	}
}

// Closes counts Close calls.
func (a *Alert) Closes() int {
	a.doc.mu.Lock()
	defer a.doc.mu.Unlock()
	return a.closes
}

// Trigger is an element with data-bs-toggle="tooltip".
type Trigger struct {
	title string
}

func (t *Trigger) Title() string { return t.title }
