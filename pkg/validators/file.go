// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

// DefaultAllowedExts is used when no upload.allowed_exts is configured
var DefaultAllowedExts = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf"}

// FileNameValidator checks the extension of name against allowed. The comparison is
// case-insensitive, allowed is expected to be lowercase with a leading dot
func FileNameValidator(name string, allowed []string) error {
	if name == "" {
		return ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !slices.Contains(allowed, ext) {
		return ErrFileTypeUnsupported
	}

	return nil
}

// NormalizeExts lowercases every extension and makes sure it starts with a dot.
// Empty entries are dropped
func NormalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}

		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}

	return out
}
