package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-mdmerge"
	"github.com/alnah/go-mdmerge/internal/config"
	"github.com/alnah/go-mdmerge/internal/hints"
)

// Exit codes for the mdmerge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful merge
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Missing files, broken links, cache or output I/O
	ExitBrowser = 4 // Browser/Chrome errors
	ExitRender  = 5 // Markdown API errors
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdmerge.ErrBrowserConnect) ||
		errors.Is(err, mdmerge.ErrPageCreate) ||
		errors.Is(err, mdmerge.ErrPageLoad) ||
		errors.Is(err, mdmerge.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Renderer errors (exit 5)
	if errors.Is(err, mdmerge.ErrRenderFailure) ||
		errors.Is(err, ErrLogin) {
		return ExitRender
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoRepoRoot) ||
		errors.Is(err, ErrStdoutNeedsEmbed) ||
		errors.Is(err, ErrOutputExtension) ||
		errors.Is(err, ErrLoginOffline) ||
		errors.Is(err, ErrCSSNotFound) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdmerge.ErrEmptyRepoRoot) ||
		errors.Is(err, mdmerge.ErrInvalidPDFBackend) ||
		errors.Is(err, mdmerge.ErrInvalidExclude) ||
		errors.Is(err, mdmerge.ErrInvalidAssetPath) ||
		errors.Is(err, mdmerge.ErrInvalidPageSize) ||
		errors.Is(err, mdmerge.ErrInvalidMargin) ||
		errors.Is(err, mdmerge.ErrCoverNotFound) {
		return ExitUsage
	}

	// I/O and document graph errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdmerge.ErrSourceNotFound) ||
		errors.Is(err, mdmerge.ErrBrokenLink) ||
		errors.Is(err, mdmerge.ErrOutsideRepo) ||
		errors.Is(err, mdmerge.ErrCacheIO) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrCopyAsset) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
// loggedIn reports whether the run had GitHub credentials.
func hintFor(err error, loggedIn bool) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, mdmerge.ErrBrowserConnect):
		return hints.ForBrowserConnect(hints.CurrentEnv())
	case errors.Is(err, mdmerge.ErrRenderFailure):
		return hints.ForRenderFailure(loggedIn)
	case errors.Is(err, mdmerge.ErrBrokenLink):
		return hints.ForBrokenLink()
	case errors.Is(err, config.ErrConfigNotFound):
		userPath := config.UserConfigPath("mdmerge")
		if userPath != "" {
			userPath += ".yaml"
		}
		return hints.ForConfigNotFound(userPath)
	case errors.Is(err, ErrStdoutNeedsEmbed):
		return hints.ForStdout()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}
