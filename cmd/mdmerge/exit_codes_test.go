package main

// Notes:
// - exitCodeFor: we test the sentinels of the library, config and CLI, plus
//   wrapped errors to verify the errors.Is chain.
// - hintFor: we test that the hinted errors get a hint and others do not.
//   Hint wording is covered in internal/hints.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-mdmerge"
	"github.com/alnah/go-mdmerge/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", mdmerge.ErrBrowserConnect, ExitBrowser},
		{"page create", mdmerge.ErrPageCreate, ExitBrowser},
		{"page load", mdmerge.ErrPageLoad, ExitBrowser},
		{"pdf generation", mdmerge.ErrPDFGeneration, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("exporting PDF: %w", mdmerge.ErrBrowserConnect), ExitBrowser},

		// Renderer errors (exit 5)
		{"render failure", mdmerge.ErrRenderFailure, ExitRender},
		{"login", ErrLogin, ExitRender},
		{"wrapped render failure", fmt.Errorf("page a.md: %w", mdmerge.ErrRenderFailure), ExitRender},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"no repo root", ErrNoRepoRoot, ExitUsage},
		{"stdout needs embed", ErrStdoutNeedsEmbed, ExitUsage},
		{"output extension", ErrOutputExtension, ExitUsage},
		{"login offline", ErrLoginOffline, ExitUsage},
		{"css not found", ErrCSSNotFound, ExitUsage},
		{"invalid timeout", ErrInvalidTimeout, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"empty repo root", mdmerge.ErrEmptyRepoRoot, ExitUsage},
		{"invalid pdf backend", mdmerge.ErrInvalidPDFBackend, ExitUsage},
		{"invalid exclude", mdmerge.ErrInvalidExclude, ExitUsage},
		{"invalid asset path", mdmerge.ErrInvalidAssetPath, ExitUsage},
		{"invalid page size", mdmerge.ErrInvalidPageSize, ExitUsage},
		{"invalid margin", mdmerge.ErrInvalidMargin, ExitUsage},
		{"cover not found", mdmerge.ErrCoverNotFound, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading config: %w", config.ErrConfigParse), ExitUsage},

		// I/O and graph errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"source not found", mdmerge.ErrSourceNotFound, ExitIO},
		{"broken link", mdmerge.ErrBrokenLink, ExitIO},
		{"outside repo", mdmerge.ErrOutsideRepo, ExitIO},
		{"cache io", mdmerge.ErrCacheIO, ExitIO},
		{"cache write", mdmerge.ErrCacheWrite, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"copy asset", ErrCopyAsset, ExitIO},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"deadline", context.DeadlineExceeded, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser, ExitRender} {
		if code >= 126 {
			t.Errorf("custom exit code %d collides with shell codes", code)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Hints for actionable errors
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"nil", nil, false},
		{"browser connect", fmt.Errorf("x: %w", mdmerge.ErrBrowserConnect), true},
		{"render failure", mdmerge.ErrRenderFailure, true},
		{"broken link", mdmerge.ErrBrokenLink, true},
		{"config not found", config.ErrConfigNotFound, true},
		{"stdout", ErrStdoutNeedsEmbed, true},
		{"write output", ErrWriteOutput, true},
		{"deadline", fmt.Errorf("merge: %w", context.DeadlineExceeded), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, false)
			if (got != "") != tt.wantHint {
				t.Errorf("hintFor(%v) = %q, want hint: %v", tt.err, got, tt.wantHint)
			}
		})
	}
}
