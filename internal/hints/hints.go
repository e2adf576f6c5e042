// Package hints turns merge failures into short suggestions appended to the
// error line as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdmerge/internal/fileutil"
)

// ciVars are set by the CI systems whose runners forbid Chrome's sandbox.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// Env is the part of the process environment the hints depend on.
type Env struct {
	Getenv      func(string) string
	InContainer bool
}

// CurrentEnv reads the environment of the running process.
func CurrentEnv() Env {
	return Env{Getenv: os.Getenv, InContainer: fileutil.FileExists("/.dockerenv")}
}

func (e Env) get(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

func (e Env) sandboxed() bool {
	if e.InContainer {
		return true
	}
	for _, key := range ciVars {
		if e.get(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect explains how to get the PDF export running, or how to
// skip it and keep the merged HTML.
func ForBrowserConnect(e Env) string {
	var steps []string
	if e.sandboxed() && e.get("ROD_NO_SANDBOX") != "1" {
		steps = append(steps, "set ROD_NO_SANDBOX=1 when merging inside a container or CI job")
	}
	if e.get("ROD_BROWSER_BIN") == "" {
		steps = append(steps, "point ROD_BROWSER_BIN at a Chrome or Chromium binary")
	}
	steps = append(steps, "or write the book as HTML with --pdf disable")
	return join(steps)
}

// ForRenderFailure addresses GitHub API failures. Anonymous calls hit the
// rate limit after a few dozen pages.
func ForRenderFailure(loggedIn bool) string {
	if loggedIn {
		return line("pages already rendered are cached; rerun later, or use --offline")
	}
	return line("use --login or MDMERGE_GITHUB_TOKEN for a higher API limit, or --offline")
}

// ForBrokenLink points at the two ways out of a dangling page link.
func ForBrokenLink() string {
	return line("page links are relative to the repository root; fix the target or skip it with --exclude <glob>")
}

// ForConfigNotFound suggests an explicit path, or the per-user file when
// userPath is known.
func ForConfigNotFound(userPath string) string {
	hint := "pass --config <file> or set MDMERGE_CONFIG"
	if userPath != "" {
		hint += ", or create " + userPath
	}
	return line(hint)
}

// ForOutputDirectory covers failures writing the book or copying images.
func ForOutputDirectory() string {
	return line("the output directory and every copied image path must be writable")
}

// ForStdout explains why HTML on stdout needs embedded images.
func ForStdout() string {
	return line("add --embed, or write to a file so images can be copied next to it")
}

// ForTimeout reminds that one deadline spans the crawl and the PDF export.
func ForTimeout() string {
	return line("the timeout covers every page and the PDF export; raise it with --timeout or MDMERGE_TIMEOUT")
}

func line(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func join(steps []string) string {
	if len(steps) == 0 {
		return ""
	}
	return line(strings.Join(steps, "; "))
}
