package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileNameValidator(t *testing.T) {
	tests := []struct {
		name string
		file string
		want error
	}{
		{"png", "photo.png", nil},
		{"uppercase", "SCAN.PDF", nil},
		{"mixed case jpeg", "holiday.JpEg", nil},
		{"gif", "a.b.gif", nil},
		{"exe", "setup.exe", ErrFileTypeUnsupported},
		{"no extension", "README", ErrFileTypeUnsupported},
		{"double extension", "photo.png.exe", ErrFileTypeUnsupported},
		{"dot file", ".png", nil},
		{"empty", "", ErrNoFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, FileNameValidator(tt.file, DefaultAllowedExts), tt.want)
		})
	}
}

func TestNormalizeExts(t *testing.T) {
	got := NormalizeExts([]string{"PNG", ".Jpg", " ", "png", ".pdf "})
	assert.Equal(t, []string{".png", ".jpg", ".pdf"}, got)
}
