package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("invalid custom path", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestAssetResolver_Fallback - Custom first, embedded fallback
// ---------------------------------------------------------------------------

func TestAssetResolver_Fallback(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles/github.css", "/* brand */")
	writeAsset(t, base, "styles/extra.css", "extra{}")

	r, err := NewAssetResolver(base)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	tests := []struct {
		name string
		load func() (string, error)
		want string
	}{
		{"custom overrides embedded style", func() (string, error) { return r.LoadStyle("github") }, "/* brand */"},
		{"custom-only style", func() (string, error) { return r.LoadStyle("extra") }, "extra{}"},
		{"embedded style fallback", func() (string, error) { return r.LoadStyle("print") }, "break-before"},
		{"embedded template fallback", func() (string, error) { return r.LoadTemplate("cover") }, `class="cover"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load()
			if err != nil {
				t.Fatalf("load error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("got %q, want it to contain %q", got, tt.want)
			}
		})
	}

	if _, err := r.LoadStyle("nowhere"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(nowhere) error = %v, want ErrStyleNotFound", err)
	}
}

func TestAssetResolver_NoFallbackOnReadError(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("directory-as-file read error differs on windows")
	}

	base := t.TempDir()
	// A directory where a file is expected yields a read error, not not-found.
	if err := os.MkdirAll(filepath.Join(base, "styles", "github.css"), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	r, err := NewAssetResolver(base)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if _, err := r.LoadStyle("github"); !errors.Is(err, ErrAssetRead) {
		t.Errorf("LoadStyle() error = %v, want ErrAssetRead", err)
	}
}
