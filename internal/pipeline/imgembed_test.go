package pipeline

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func writeImage(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestEmbedImage - Data URI construction
// ---------------------------------------------------------------------------

func TestEmbedImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeImage(t, dir, "img/logo.png", pngBytes)
	writeImage(t, dir, "diagram.svg", []byte("<svg/>"))

	tests := []struct {
		name     string
		src      string
		wantMIME string
		wantData []byte
	}{
		{"png in subdirectory", "img/logo.png", "image/png", pngBytes},
		{"svg", "diagram.svg", "image/svg+xml", []byte("<svg/>")},
		{"query stripped", "img/logo.png?raw=true", "image/png", pngBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EmbedImage(dir, tt.src)
			if err != nil {
				t.Fatalf("EmbedImage() error = %v", err)
			}
			prefix := "data:" + tt.wantMIME + ";base64,"
			if !strings.HasPrefix(got.Src, prefix) {
				t.Fatalf("Src = %q, want prefix %q", got.Src, prefix)
			}
			data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got.Src, prefix))
			if err != nil {
				t.Fatalf("payload not base64: %v", err)
			}
			if string(data) != string(tt.wantData) {
				t.Errorf("payload = %q, want %q", data, tt.wantData)
			}
			if got.Alt != tt.src {
				t.Errorf("Alt = %q, want %q", got.Alt, tt.src)
			}
		})
	}
}

func TestEmbedImage_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeImage(t, dir, "notes.txt.unknownext", []byte("x"))

	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"missing file", "nope.png", ErrImageNotFound},
		{"missing file is not-exist", "nope.png", fs.ErrNotExist},
		{"unknown type", "notes.txt.unknownext", ErrUnknownImageType},
		{"no extension", "README", ErrUnknownImageType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := EmbedImage(dir, tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("EmbedImage(%q) error = %v, want %v", tt.src, err, tt.wantErr)
			}
		})
	}
}

func TestLocateImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeImage(t, dir, "a/b.png", pngBytes)

	got, err := LocateImage(filepath.Join(dir, "a"), "./b.png#x")
	if err != nil {
		t.Fatalf("LocateImage() error = %v", err)
	}
	if want := filepath.Join(dir, "a", "b.png"); got != want {
		t.Errorf("LocateImage() = %q, want %q", got, want)
	}

	if _, err := LocateImage(dir, "a"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("LocateImage(directory) error = %v, want ErrImageNotFound", err)
	}
	if _, err := LocateImage(dir, "missing.png"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("LocateImage(missing) error = %v, want ErrImageNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// TestIsLocalReference - Reference classification
// ---------------------------------------------------------------------------

func TestIsLocalReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want bool
	}{
		{"img/a.png", true},
		{"./a.png", true},
		{"../shared/a.png", true},
		{"a.png?raw=1", true},
		{"", false},
		{"#top", false},
		{"data:image/png;base64,AAAA", false},
		{"DATA:image/png;base64,AAAA", false},
		{"https://example.com/a.png", false},
		{"//cdn.example.com/a.png", false},
		{"mailto:a@example.com", false},
		{"/abs/a.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			if got := IsLocalReference(tt.src); got != tt.want {
				t.Errorf("IsLocalReference(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"my%20file.md", "my file.md"},
		{"plain.md", "plain.md"},
		{"bad%zzescape.md", "bad%zzescape.md"},
	}
	for _, tt := range tests {
		if got := Unescape(tt.in); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
