package main

// Notes:
// - run: end-to-end with the offline renderer and a cache in t.TempDir().
//   PDF output uses a fake exporter injected through Environment.
// - Tests clear MDMERGE_* variables with t.Setenv, so they do not run in
//   parallel.
// - watchAndMerge: covered through outputSet; the watcher itself is tested
//   in internal/watch.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdmerge"
)

type fakeExporter struct {
	calls int
}

func (f *fakeExporter) ExportPDF(context.Context, string, *mdmerge.PageSettings) ([]byte, error) {
	f.calls++
	return []byte("%PDF-1.7 fake"), nil
}

func (f *fakeExporter) Close() error { return nil }

// pngBytes is a 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"MDMERGE_CONFIG", "MDMERGE_CACHE_DIR", "MDMERGE_GITHUB_TOKEN", "MDMERGE_TIMEOUT"} {
		t.Setenv(name, "")
	}
}

func newRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string][]byte{
		"README.md":        []byte("# Handbook\n\nStart with the [guide](docs/guide.md).\n"),
		"docs/guide.md":    []byte("# Guide\n\n![logo](../img/logo.png)\n\nBack to [home](README.md).\n"),
		"img/logo.png":     pngBytes,
		"unlinked/page.md": []byte("# Orphan\n"),
	}
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return root
}

func testEnv(exporter *fakeExporter) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdin:        strings.NewReader(""),
		Stdout:       &stdout,
		Stderr:       &stderr,
		ReadPassword: lineReader,
	}
	if exporter != nil {
		env.MergerOptions = []mdmerge.Option{mdmerge.WithPDFExporter(exporter)}
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestRun_HTML - Merge to a file and ship assets
// ---------------------------------------------------------------------------

func TestRun_HTML(t *testing.T) {
	clearEnv(t)

	repo := newRepo(t)
	outDir := t.TempDir()
	env, _, stderr := testEnv(nil)

	err := run(context.Background(), []string{
		repo, "--offline", "--cache-dir", t.TempDir(), "-o", filepath.Join(outDir, "book"),
	}, env)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	html, err := os.ReadFile(filepath.Join(outDir, "book.html"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	for _, want := range []string{"Handbook", "Guide", `href="#page-docs/guide.md"`} {
		if !strings.Contains(string(html), want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(string(html), "Orphan") {
		t.Error("unlinked page must not be merged")
	}
	if _, err := os.Stat(filepath.Join(outDir, "img", "logo.png")); err != nil {
		t.Errorf("asset not copied next to output: %v", err)
	}
	if !strings.Contains(stderr.String(), "Merged 2 pages") {
		t.Errorf("summary missing, stderr = %q", stderr.String())
	}
}

func TestRun_EmbedToStdout(t *testing.T) {
	clearEnv(t)

	repo := newRepo(t)
	env, stdout, _ := testEnv(nil)

	err := run(context.Background(), []string{repo, "--offline", "--embed", "-q", "--cache-dir", t.TempDir()}, env)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "data:image/png;base64,") {
		t.Error("image not embedded in stdout output")
	}
}

func TestRun_PDF(t *testing.T) {
	clearEnv(t)

	repo := newRepo(t)
	out := filepath.Join(t.TempDir(), "book.pdf")
	exporter := &fakeExporter{}
	env, _, _ := testEnv(exporter)

	err := run(context.Background(), []string{repo, "--offline", "--pdf", "chrome", "-q", "--cache-dir", t.TempDir(), "-o", out}, env)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exporter.calls != 1 {
		t.Errorf("ExportPDF calls = %d, want 1", exporter.calls)
	}
	data, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("PDF not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(out), "img")); !os.IsNotExist(err) {
		t.Error("assets must not be copied for PDF output")
	}
}

func TestRun_EnvCacheDir(t *testing.T) {
	clearEnv(t)
	cacheDir := t.TempDir()
	t.Setenv("MDMERGE_CACHE_DIR", cacheDir)

	repo := newRepo(t)
	env, _, _ := testEnv(nil)

	if err := run(context.Background(), []string{repo, "--offline", "--embed", "-q"}, env); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) == 0 {
		t.Errorf("cache not written under MDMERGE_CACHE_DIR: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestRun_Errors - Failures map to sentinels
// ---------------------------------------------------------------------------

func TestRun_Errors(t *testing.T) {
	clearEnv(t)

	repo := newRepo(t)
	broken := t.TempDir()
	if err := os.WriteFile(filepath.Join(broken, "README.md"), []byte("[gone](gone.md)\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		wantCode int
	}{
		{"unknown flag", []string{repo, "--nope"}, ErrUsage, ExitUsage},
		{"missing config", []string{repo, "--embed", "-c", "./missing.yaml"}, nil, ExitUsage},
		{"missing repo", []string{filepath.Join(repo, "absent"), "--offline", "--embed"}, mdmerge.ErrSourceNotFound, ExitIO},
		{"missing entry", []string{repo, "--offline", "--embed", "--entry", "absent.md"}, mdmerge.ErrSourceNotFound, ExitIO},
		{"broken link", []string{broken, "--offline", "--embed"}, mdmerge.ErrBrokenLink, ExitIO},
		{"excluded broken link", []string{broken, "--offline", "--embed", "--exclude", "gone.md"}, nil, ExitSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := testEnv(nil)
			args := append(tt.args, "-q", "--cache-dir", t.TempDir())

			err := run(context.Background(), args, env)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := exitCodeFor(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	clearEnv(t)

	env, stdout, _ := testEnv(nil)
	if err := run(context.Background(), []string{"--version"}, env); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "mdmerge "+Version) {
		t.Errorf("stdout = %q, want version", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	clearEnv(t)

	env, _, stderr := testEnv(nil)
	if err := run(context.Background(), []string{"--help"}, env); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "Usage: mdmerge") {
		t.Errorf("usage not printed, stderr = %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestCopyAssets - Asset shipping
// ---------------------------------------------------------------------------

func TestCopyAssets(t *testing.T) {
	t.Parallel()

	repo := newRepo(t)
	logo := filepath.Join(repo, "img", "logo.png")

	t.Run("mirrors repo paths", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		copied, err := copyAssets(repo, out, []string{logo})
		if err != nil {
			t.Fatalf("copyAssets: %v", err)
		}
		want := filepath.Join(out, "img", "logo.png")
		if len(copied) != 1 || copied[0] != want {
			t.Errorf("copied = %v, want [%s]", copied, want)
		}
	})

	t.Run("output in repo root skips copy", func(t *testing.T) {
		t.Parallel()

		copied, err := copyAssets(repo, repo, []string{logo})
		if err != nil {
			t.Fatalf("copyAssets: %v", err)
		}
		if len(copied) != 0 {
			t.Errorf("copied = %v, want none", copied)
		}
	})

	t.Run("asset outside repo", func(t *testing.T) {
		t.Parallel()

		outside := filepath.Join(t.TempDir(), "x.png")
		_, err := copyAssets(repo, t.TempDir(), []string{outside})
		if !errors.Is(err, ErrCopyAsset) {
			t.Errorf("error = %v, want ErrCopyAsset", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestOutputSet - Files written by the last merge
// ---------------------------------------------------------------------------

func TestOutputSet(t *testing.T) {
	t.Parallel()

	s := newOutputSet([]string{"/out/book.html", "/out/img/a.png"})
	if !s.contains("/out/book.html") || !s.contains("/out/img/a.png") {
		t.Error("initial paths not contained")
	}

	s.replace([]string{"/out/book.html"})
	if s.contains("/out/img/a.png") {
		t.Error("replaced path still contained")
	}
}
