//go:build js && wasm

// Package jsdom binds the form controller to the browser DOM through
// syscall/js. Icons are rendered by the global feather object and alerts and
// tooltips by the global bootstrap object; when either is missing the
// corresponding feature is skipped.
package jsdom

import (
	"syscall/js"

	"go-excelproc/internal/formctl"
)

// Document wraps window.document.
type Document struct {
	doc js.Value
	// funcs keeps callbacks alive for the page's lifetime.
	funcs []js.Func
}

func New() *Document {
	return &Document{doc: js.Global().Get("document")}
}

func (d *Document) byID(id string) (js.Value, bool) {
	el := d.doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return js.Value{}, false
	}
	return el, true
}

func (d *Document) keep(f js.Func) js.Func {
	d.funcs = append(d.funcs, f)
	return f
}

func (d *Document) FileInput(id string) (formctl.FileInput, bool) {
	el, ok := d.byID(id)
	if !ok {
		return nil, false
	}
	return &fileInput{d: d, el: el}, true
}

func (d *Document) Form(id string) (formctl.Form, bool) {
	el, ok := d.byID(id)
	if !ok {
		return nil, false
	}
	return &form{d: d, el: el}, true
}

func (d *Document) Button(id string) (formctl.Button, bool) {
	el, ok := d.byID(id)
	if !ok {
		return nil, false
	}
	return button{el: el}, true
}

func (d *Document) TooltipTriggers() []formctl.TooltipTrigger {
	nodes := d.doc.Call("querySelectorAll", formctl.TooltipMarker)
	out := make([]formctl.TooltipTrigger, 0, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		out = append(out, trigger{el: nodes.Index(i)})
	}
	return out
}

func (d *Document) Alerts() []formctl.AlertHandle {
	nodes := d.doc.Call("querySelectorAll", ".alert")
	out := make([]formctl.AlertHandle, 0, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		out = append(out, alert{el: nodes.Index(i)})
	}
	return out
}

func (d *Document) RemoveAlerts() {
	nodes := d.doc.Call("querySelectorAll", ".alert")
	for i := 0; i < nodes.Length(); i++ {
		nodes.Index(i).Call("remove")
	}
}

func (d *Document) InsertAlert(b formctl.Banner) (formctl.AlertHandle, bool) {
	container := d.doc.Call("querySelector", formctl.MainContainer)
	if container.IsNull() {
		return nil, false
	}
	div := d.doc.Call("createElement", "div")
	div.Set("className", b.ClassName())
	div.Call("setAttribute", "role", "alert")
	div.Set("innerHTML", formctl.RenderBannerBody(b))
	container.Call("insertBefore", div, container.Get("firstChild"))
	return alert{el: div}, true
}

type fileInput struct {
	d  *Document
	el js.Value
}

func (in *fileInput) Selected() (formctl.FileInfo, bool) {
	files := in.el.Get("files")
	if files.IsNull() || files.Length() == 0 {
		return formctl.FileInfo{}, false
	}
	f := files.Index(0)
	return formctl.FileInfo{
		Name: f.Get("name").String(),
		Size: int64(f.Get("size").Float()),
		Type: f.Get("type").String(),
	}, true
}

func (in *fileInput) Clear() {
	in.el.Set("value", "")
}

func (in *fileInput) OnChange(h func()) {
	in.el.Call("addEventListener", "change", in.d.keep(js.FuncOf(func(js.Value, []js.Value) any {
		h()
		return nil
	})))
}

type form struct {
	d  *Document
	el js.Value
}

func (f *form) OnSubmit(h func(formctl.SubmitEvent)) {
	f.el.Call("addEventListener", "submit", f.d.keep(js.FuncOf(func(_ js.Value, args []js.Value) any {
		h(submitEvent{ev: args[0]})
		return nil
	})))
}

func (f *form) SubmitButton() (formctl.Button, bool) {
	el := f.el.Call("querySelector", `button[type="submit"]`)
	if el.IsNull() {
		return nil, false
	}
	return button{el: el}, true
}

type submitEvent struct{ ev js.Value }

func (e submitEvent) PreventDefault() { e.ev.Call("preventDefault") }

type button struct{ el js.Value }

func (b button) SetLabel(l formctl.Label) {
	doc := js.Global().Get("document")
	b.el.Set("textContent", "")
	if l.Icon != "" {
		i := doc.Call("createElement", "i")
		i.Call("setAttribute", "data-feather", l.Icon)
		b.el.Call("appendChild", i)
		b.el.Call("appendChild", doc.Call("createTextNode", " "))
	}
	b.el.Call("appendChild", doc.Call("createTextNode", l.Text))
}

func (b button) SetBusy(text string) {
	b.el.Get("classList").Call("add", formctl.BusyClass)
	b.el.Set("disabled", true)
	b.el.Set("textContent", text)
}

type alert struct{ el js.Value }

func (a alert) Attached() bool {
	return !a.el.Get("parentNode").IsNull()
}

func (a alert) Close() {
	bs := js.Global().Get("bootstrap")
	if bs.IsUndefined() {
		a.el.Call("remove")
		return
	}
	bs.Get("Alert").New(a.el).Call("close")
}

type trigger struct{ el js.Value }

func (t trigger) Title() string {
	if v := t.el.Call("getAttribute", "data-bs-title"); !v.IsNull() {
		return v.String()
	}
	if v := t.el.Call("getAttribute", "title"); !v.IsNull() {
		return v.String()
	}
	return ""
}

// Icons calls feather.replace().
type Icons struct{}

func (Icons) Replace() {
	if f := js.Global().Get("feather"); !f.IsUndefined() {
		f.Call("replace")
	}
}

// Tooltips creates bootstrap.Tooltip instances.
type Tooltips struct{}

func (Tooltips) Attach(t formctl.TooltipTrigger) {
	bs := js.Global().Get("bootstrap")
	if bs.IsUndefined() {
		return
	}
	if tr, ok := t.(trigger); ok {
		bs.Get("Tooltip").New(tr.el)
	}
}
