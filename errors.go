package mdmerge

import (
	"errors"

	"github.com/alnah/go-mdmerge/internal/cache"
	"github.com/alnah/go-mdmerge/internal/crawl"
	"github.com/alnah/go-mdmerge/internal/pipeline"
)

// Crawl and render errors, shared with the internal packages so errors.Is
// matches at every layer.
var (
	ErrSourceNotFound = crawl.ErrSourceNotFound
	ErrBrokenLink     = crawl.ErrBrokenLink
	ErrOutsideRepo    = crawl.ErrOutsideRepo
	ErrRenderFailure  = pipeline.ErrRenderFailure

	// ErrCacheRead and ErrCacheWrite both wrap ErrCacheIO.
	ErrCacheIO    = cache.ErrCacheIO
	ErrCacheRead  = cache.ErrCacheRead
	ErrCacheWrite = cache.ErrCacheWrite
)

// Sentinel errors for library operations.
var (
	ErrEmptyRepoRoot     = errors.New("repository root cannot be empty")
	ErrInvalidPDFBackend = errors.New("invalid PDF backend")
	ErrInvalidExclude    = errors.New("invalid exclude pattern")
	ErrPDFGeneration     = errors.New("PDF generation failed")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")
	ErrInvalidAssetPath  = errors.New("invalid asset path")

	// Page settings validation errors.
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrInvalidMargin   = errors.New("invalid margin")

	// Cover validation errors.
	ErrCoverNotFound = errors.New("cover image file not found")
)
