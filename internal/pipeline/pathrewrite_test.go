package pipeline

// Notes:
// - Path traversal tests check the observable behavior (reference left as
//   written) rather than isPathUnderDir directly.
// - Error branches of parseHTML/renderHTML are not exercised: the html package
//   does not fail on string input.

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRewriteRelativePaths - Attribute rewriting
// ---------------------------------------------------------------------------

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	baseDir := "/docs"
	if runtime.GOOS == "windows" {
		baseDir = `C:\docs`
	}

	tests := []struct {
		name         string
		html         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "relative image",
			html:         `<img src="images/logo.png">`,
			wantContains: []string{`src="file://`, `images/logo.png"`},
		},
		{
			name:         "dot slash image",
			html:         `<img src="./images/logo.png">`,
			wantContains: []string{`src="file://`},
			wantExcludes: []string{"./images"},
		},
		{
			name:         "escaped image reference",
			html:         `<img src="my%20pic.png">`,
			wantContains: []string{`src="file://`, `my%20pic.png"`},
		},
		{
			name:         "relative stylesheet",
			html:         `<link rel="stylesheet" href="theme.css">`,
			wantContains: []string{`href="file://`},
		},
		{
			name:         "anchors untouched",
			html:         `<a href="#page-README.md">x</a><a href="other.html">y</a>`,
			wantContains: []string{`href="#page-README.md"`, `href="other.html"`},
		},
		{
			name:         "remote image untouched",
			html:         `<img src="https://example.com/a.png">`,
			wantContains: []string{`src="https://example.com/a.png"`},
		},
		{
			name:         "data image untouched",
			html:         `<img src="data:image/png;base64,AAAA">`,
			wantContains: []string{`src="data:image/png;base64,AAAA"`},
		},
		{
			name:         "absolute path untouched",
			html:         `<img src="/abs/logo.png">`,
			wantContains: []string{`src="/abs/logo.png"`},
		},
		{
			name:         "traversal left as written",
			html:         `<img src="../../etc/passwd.png">`,
			wantContains: []string{`src="../../etc/passwd.png"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativePaths(tt.html, baseDir)
			if err != nil {
				t.Fatalf("RewriteRelativePaths() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("got %q, want it to contain %q", got, want)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("got %q, want it not to contain %q", got, bad)
				}
			}
		})
	}
}

func TestRewriteRelativePaths_EmptyBaseDir(t *testing.T) {
	t.Parallel()

	in := `<img src="a.png">`
	got, err := RewriteRelativePaths(in, "")
	if err != nil {
		t.Fatalf("RewriteRelativePaths() error = %v", err)
	}
	if got != in {
		t.Errorf("RewriteRelativePaths() = %q, want unchanged", got)
	}
}

func TestRewriteRelativePaths_FullDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := `<!DOCTYPE html><html><head><title>t</title></head><body><img src="a.png"></body></html>`

	got, err := RewriteRelativePaths(in, dir)
	if err != nil {
		t.Fatalf("RewriteRelativePaths() error = %v", err)
	}
	if !strings.HasPrefix(strings.ToLower(got), "<!doctype html>") {
		t.Errorf("doctype lost: %q", got)
	}
	want := pathToFileURL(filepath.Join(dir, "a.png"))
	if !strings.Contains(got, want) {
		t.Errorf("got %q, want it to contain %q", got, want)
	}
}
