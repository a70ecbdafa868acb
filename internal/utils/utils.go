// Package utils provides helpers for naming stored uploads.
//
// Functions:
//   - SanitizeFilename: Returns a safe filename for storage, keeping the extension.
//     Input: string (filename)
//     Output: string (sanitized filename)
//   - GenerateUUID: Returns a new UUID string.
//     Output: string (UUID)
//   - StoredName: Returns "<uuid>-<sanitized name>".
//
// Used by the upload handler and the job manager.
package utils

import (
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

const maxNameLen = 100

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" {
		base = "upload"
	}
	safe := unsafeChars.ReplaceAllString(base, "_")
	if len(safe) > maxNameLen {
		ext := filepath.Ext(safe)
		if len(ext) >= maxNameLen {
			ext = ""
		}
		safe = safe[:maxNameLen-len(ext)] + ext
	}
	return safe
}

func GenerateUUID() string {
	return uuid.New().String()
}

func StoredName(filename string) string {
	return GenerateUUID() + "-" + SanitizeFilename(filename)
}
