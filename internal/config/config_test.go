package config

// Notes:
// - resolveConfigPath by name is only tested for the not-found branch: the
//   current directory is shared by parallel tests and the user config dir is
//   outside the sandbox.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdmerge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading and strict parsing
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
entry: docs/index.md
render:
  offline: true
  embed: true
  timeout: 2m
output:
  path: book.pdf
  pdf: chrome
  mainCSS: builtin
  css:
    - extra.css
    - https://example.com/theme.css
  cover: cover.png
cache:
  dir: /tmp/mdmerge-cache
page:
  size: a4
  margin: 0.54
links:
  exclude:
    - "drafts/*"
assets:
  basePath: ./brand
github:
  apiURL: https://ghe.example.com/api/v3
  context: octo/docs
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"entry", cfg.Entry, "docs/index.md"},
		{"render.offline", cfg.Render.Offline, true},
		{"render.embed", cfg.Render.Embed, true},
		{"render.timeout", cfg.Render.Timeout, "2m"},
		{"output.pdf", cfg.Output.PDF, "chrome"},
		{"output.css length", len(cfg.Output.CSS), 2},
		{"output.css[1]", cfg.Output.CSS[1], "https://example.com/theme.css"},
		{"cache.dir", cfg.Cache.Dir, "/tmp/mdmerge-cache"},
		{"page.size", cfg.Page.Size, "a4"},
		{"page.margin", cfg.Page.Margin, 0.54},
		{"links.exclude[0]", cfg.Links.Exclude[0], "drafts/*"},
		{"assets.basePath", cfg.Assets.BasePath, "./brand"},
		{"github.context", cfg.GitHub.Context, "octo/docs"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"unknown field", "render:\n  grip: true\n", ErrConfigParse},
		{"wrong type", "render:\n  offline: maybe\n", ErrConfigParse},
		{"invalid pdf backend", "output:\n  pdf: pdfkit\n", ErrInvalidValue},
		{"invalid page size", "page:\n  size: a3\n", ErrInvalidValue},
		{"negative margin", "page:\n  margin: -1\n", ErrInvalidValue},
		{"invalid glob", "links:\n  exclude: ['[oops']\n", ErrInvalidValue},
		{"field too long", "github:\n  context: " + strings.Repeat("x", MaxContextLength+1) + "\n", ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(writeConfig(t, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty name", "", ErrEmptyConfigName},
		{"missing path", filepath.Join(t.TempDir(), "none.yaml"), ErrConfigNotFound},
		{"missing name", "mdmerge-config-that-does-not-exist", ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidate - Programmatic configs
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}

	cfg := &Config{Output: OutputConfig{PDF: "CHROME"}, Page: PageConfig{Size: "Letter", Margin: MaxMargin}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() case-insensitive values error = %v", err)
	}

	cfg = &Config{Output: OutputConfig{CSS: []string{strings.Repeat("x", MaxURLLength+1)}}}
	if err := cfg.Validate(); !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("Validate() long css error = %v, want ErrFieldTooLong", err)
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"work":           false,
		"./work.yaml":    true,
		"configs/x.yaml": true,
		`C:\cfg\x.yaml`:  true,
		"work.yaml":      false,
	}
	for in, want := range tests {
		if got := isFilePath(in); got != want {
			t.Errorf("isFilePath(%q) = %v, want %v", in, got, want)
		}
	}
}
