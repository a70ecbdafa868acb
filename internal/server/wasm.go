package server

import (
	"os"
	"path/filepath"
)

// The upload page runs cmd/formctl in the browser. These directives build it
// into the default static directory together with the Go runtime shim:
//
//	go generate ./internal/server
//
// Point STATIC_DIR at the same directory, or copy both files there.
//
//go:generate mkdir -p ../../static
//go:generate env GOOS=js GOARCH=wasm go build -o ../../static/formctl.wasm ../../cmd/formctl
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" ../../static/"

const (
	// WASMFile is the controller binary looked up in the static directory.
	WASMFile = "formctl.wasm"
	// WASMExecFile is the runtime shim that loads WASMFile.
	WASMExecFile = "wasm_exec.js"
)

// hasWASM reports whether both bootstrap files are served; the page only
// loads the controller when it can run.
func (s *Server) hasWASM() bool {
	if s.StaticDir == "" {
		return false
	}
	for _, name := range []string{WASMFile, WASMExecFile} {
		info, err := os.Stat(filepath.Join(s.StaticDir, name))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}
