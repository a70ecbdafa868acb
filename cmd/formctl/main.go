//go:build js && wasm

// Command formctl is the browser side of the upload page. Build it, along
// with the wasm_exec.js shim, into the static directory with
//
//	go generate ./internal/server
//
// The index page loads it through wasm_exec.js when both files are present.
package main

import (
	"syscall/js"

	"go-excelproc/internal/formctl"
	"go-excelproc/internal/formctl/jsdom"
)

func main() {
	doc := jsdom.New()
	ctl := formctl.New(doc, jsdom.Icons{}, jsdom.Tooltips{})
	ctl.Init()

	// Exported for pages and test harnesses.
	js.Global().Set("formctl", js.ValueOf(map[string]any{
		"showAlert": js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			sev := formctl.SeverityInfo
			if len(args) > 1 && args[1].Type() == js.TypeString {
				sev = formctl.Severity(args[1].String())
			}
			ctl.ShowAlert(args[0].String(), sev)
			return nil
		}),
		"formatFileSize": js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) == 0 {
				return formctl.FormatFileSize(0)
			}
			return formctl.FormatFileSize(int64(args[0].Float()))
		}),
		"validateExcelFile": js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) == 0 || args[0].Type() != js.TypeObject {
				return false
			}
			f := formctl.FileInfo{Name: args[0].Get("name").String()}
			if t := args[0].Get("type"); t.Type() == js.TypeString {
				f.Type = t.String()
			}
			return formctl.ValidateExcelFile(f)
		}),
	}))

	select {}
}
