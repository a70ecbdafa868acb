// Package formctl implements the upload form controller of the web UI.
//
// The controller validates the file picked in the upload form, toggles the
// busy state of submit buttons, renders dismissible alert banners and wires
// tooltips. It never touches a browser directly: every element it needs is
// reached through the view interfaces in view.go, and timers, icons and
// tooltips are injected capabilities.
//
// Hosts:
//   - internal/formctl/jsdom: syscall/js bindings, compiled to WebAssembly by cmd/formctl.
//   - internal/formctl/memdom: in-memory document used by tests and the CLI.
//
// The pure parts (EvaluateSelection, EvaluateSubmit, FormatFileSize,
// ValidateExcelFile, RenderBanner) are also used by the HTTP server.
package formctl

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MaxFileSize is the largest upload accepted by the form (16 MiB).
const MaxFileSize = 16 * 1024 * 1024

const labelMaxRunes = 20

var (
	ErrOversize        = errors.New("file exceeds 16MB")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrNoFile          = errors.New("no file selected")
)

// AllowedExtensions are the spreadsheet suffixes accepted by the guard.
var AllowedExtensions = []string{"xlsx", "xls"}

// ExcelMIMETypes are the two canonical spreadsheet content types.
var ExcelMIMETypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
}

// SelectionError reports why a selected file was rejected.
type SelectionError struct {
	Name string
	Err  error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("file %q rejected: %v", e.Name, e.Err)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// FileInfo is the file currently chosen in a file input.
type FileInfo struct {
	Name string
	Size int64
	Type string
}

// Extension returns the lowercased text after the last '.' of the name.
// A name without a dot is returned whole, lowercased.
func (f FileInfo) Extension() string {
	name := f.Name
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// CheckSelection applies the guard rules: size first, then extension.
func CheckSelection(f FileInfo) error {
	if f.Size > MaxFileSize {
		return &SelectionError{Name: f.Name, Err: ErrOversize}
	}
	if !slices.Contains(AllowedExtensions, f.Extension()) {
		return &SelectionError{Name: f.Name, Err: ErrUnsupportedType}
	}
	return nil
}

// ValidateExcelFile reports whether the file looks like a spreadsheet by its
// declared MIME type or by its extension. It is looser than CheckSelection,
// which ignores the MIME type and enforces the size limit.
func ValidateExcelFile(f FileInfo) bool {
	return slices.Contains(ExcelMIMETypes, f.Type) || slices.Contains(AllowedExtensions, f.Extension())
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with two decimals at most,
// e.g. 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	if bytes < 0 {
		return strconv.FormatInt(bytes, 10) + " Bytes"
	}
	i := 0
	for i < len(sizeUnits)-1 && bytes >= int64(1)<<(10*(i+1)) {
		i++
	}
	scaled := float64(bytes) / math.Pow(1024, float64(i))
	rounded := math.Round(scaled*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[i]
}

// TruncateName shortens a file name for use in a button label.
func TruncateName(name string) string {
	r := []rune(name)
	if len(r) > labelMaxRunes {
		return string(r[:labelMaxRunes]) + "..."
	}
	return name
}
