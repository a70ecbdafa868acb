package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go-excelproc/internal/formctl"

	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Field is one input of the manual record form.
type Field struct {
	Name  string
	Label string
	Type  string
	Hint  string
}

// RecordFields are the columns a manual record can carry; they match the
// headers expected in uploaded sheets.
var RecordFields = []Field{
	{Name: "usuario", Label: "Usuario", Type: "text", Hint: "Identificador de acceso al portal"},
	{Name: "clave", Label: "Clave", Type: "password", Hint: "Contraseña del usuario"},
	{Name: "expedicion", Label: "Expedición del pasaporte", Type: "date", Hint: "Fecha de expedición"},
	{Name: "expiracion", Label: "Expiración del pasaporte", Type: "date", Hint: "Fecha de expiración"},
	{Name: "e_no", Label: "Número de carnet", Type: "text", Hint: "Número del documento de estancia"},
	{Name: "e_expedicion", Label: "Expedición del carnet", Type: "date", Hint: "Fecha de expedición"},
	{Name: "e_expiracion", Label: "Expiración del carnet", Type: "date", Hint: "Fecha de expiración"},
}

type page struct {
	Banner      template.HTML
	MaxSize     string
	UploadLabel string
	Fields      []Field
	WASM        bool
}

func (h *APIHandler) renderIndex(w http.ResponseWriter, status int, banner *formctl.Banner) {
	p := page{
		MaxSize:     formctl.FormatFileSize(formctl.MaxFileSize),
		UploadLabel: formctl.LabelDefault,
		Fields:      RecordFields,
		WASM:        h.WASM,
	}
	if banner != nil {
		p.Banner = formctl.RenderBanner(*banner)
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, p); err != nil {
		h.log.Error("render index", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
