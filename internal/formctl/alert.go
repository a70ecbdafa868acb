package formctl

import (
	"bytes"
	"errors"
	"html/template"
	"time"
)

// AutoDismissDelay is how long a banner stays up before closing itself.
const AutoDismissDelay = 5 * time.Second

// Severity selects the styling and icon of a banner.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Class returns the bootstrap contextual class suffix.
func (s Severity) Class() string {
	switch s {
	case SeverityError:
		return "danger"
	case SeveritySuccess:
		return "success"
	default:
		return "info"
	}
}

// Icon returns the feather icon name shown in the banner.
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "alert-circle"
	case SeveritySuccess:
		return "check-circle"
	default:
		return "info"
	}
}

// Banner is a transient notification.
type Banner struct {
	Message  string
	Severity Severity
}

// ClassName is the full class attribute of the banner element.
func (b Banner) ClassName() string {
	return "alert alert-" + b.Severity.Class() + " alert-dismissible fade show"
}

var bannerTmpl = template.Must(template.New("banner").Parse(
	`<div class="{{.ClassName}}" role="alert">` +
		`<i data-feather="{{.Severity.Icon}}"></i> {{.Message}} ` +
		`<button type="button" class="btn-close" data-bs-dismiss="alert"></button>` +
		`</div>`))

var bannerBodyTmpl = template.Must(template.New("body").Parse(
	`<i data-feather="{{.Severity.Icon}}"></i> {{.Message}} ` +
		`<button type="button" class="btn-close" data-bs-dismiss="alert"></button>`))

// RenderBanner returns the banner as an HTML fragment with the message escaped.
func RenderBanner(b Banner) template.HTML {
	var buf bytes.Buffer
	_ = bannerTmpl.Execute(&buf, b)
	return template.HTML(buf.String())
}

// RenderBannerBody returns the inner markup of the banner element, for hosts
// that create the outer element themselves.
func RenderBannerBody(b Banner) string {
	var buf bytes.Buffer
	_ = bannerBodyTmpl.Execute(&buf, b)
	return buf.String()
}

// User-facing texts.
const (
	MsgOversize     = "El archivo es demasiado grande. Tamaño máximo: 16MB"
	MsgUnsupported  = "Tipo de archivo no permitido. Use archivos .xlsx o .xls"
	MsgSelectFile   = "Por favor seleccione un archivo"
	MsgProcessing   = "Procesando archivo, por favor espere..."
	LabelBusy       = "Procesando..."
	LabelDefault    = "Procesar Archivo"
	labelFilePrefix = "Procesar: "
	iconUpload      = "upload"
)

// BannerFor maps a selection error to the banner the user sees.
func BannerFor(err error) Banner {
	switch {
	case err == nil:
		return Banner{}
	case errors.Is(err, ErrOversize):
		return Banner{Message: MsgOversize, Severity: SeverityError}
	case errors.Is(err, ErrUnsupportedType):
		return Banner{Message: MsgUnsupported, Severity: SeverityError}
	case errors.Is(err, ErrNoFile):
		return Banner{Message: MsgSelectFile, Severity: SeverityError}
	default:
		return Banner{Message: err.Error(), Severity: SeverityError}
	}
}
