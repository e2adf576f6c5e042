package mdmerge

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mdmerge/internal/fileutil"
	"github.com/alnah/go-mdmerge/internal/pipeline"
)

// DefaultEntry is the entry page used when Input.Entry is empty.
const DefaultEntry = "README.md"

// BuiltinStyle is the stylesheet reference for the embedded GitHub style.
// It is inlined into the document instead of linked.
const BuiltinStyle = "builtin"

// PDFBackend selects how the merged document is exported to PDF.
type PDFBackend string

// PDF backends.
const (
	PDFDisable PDFBackend = "disable"
	PDFChrome  PDFBackend = "chrome"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.54
)

// Input locates the Markdown tree to merge.
type Input struct {
	RepoRoot string // directory holding the pages (required)
	Entry    string // entry page relative to RepoRoot (default: README.md)
}

// Validate checks that the repository root is set.
func (in Input) Validate() error {
	if strings.TrimSpace(in.RepoRoot) == "" {
		return ErrEmptyRepoRoot
	}
	if !fileutil.DirExists(in.RepoRoot) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, in.RepoRoot)
	}
	return nil
}

// Credentials authenticate against the GitHub Markdown API.
type Credentials = pipeline.Credentials

// CredentialProvider supplies credentials on demand.
type CredentialProvider = pipeline.CredentialProvider

// RendererSettings select the Markdown renderer.
type RendererSettings struct {
	Offline     bool               // render locally instead of through the GitHub API
	Credentials CredentialProvider // nil = anonymous; never part of the cache fingerprint
}

// PostSettings control processing applied to rendered pages.
type PostSettings struct {
	EmbedImages bool // inline local images as data URIs
}

// OutputSettings describe the merged artifact.
type OutputSettings struct {
	CSS   []string      // stylesheet references in order; BuiltinStyle inlines the default style
	PDF   PDFBackend    // empty = PDFDisable
	Page  *PageSettings // PDF page settings (nil = defaults)
	Cover string        // cover image path for PDF output (optional)
}

// RenderOptions are the per-merge options. Build them once and do not mutate
// them while a merge runs.
type RenderOptions struct {
	Renderer RendererSettings
	Post     PostSettings
	Output   OutputSettings
}

// Validate checks the PDF settings.
func (o RenderOptions) Validate() error {
	switch o.Output.PDF {
	case "", PDFDisable, PDFChrome:
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidPDFBackend, o.Output.PDF, PDFDisable, PDFChrome)
	}
	if err := o.Output.Page.Validate(); err != nil {
		return err
	}
	if o.Output.Cover != "" && !fileutil.FileExists(o.Output.Cover) {
		return fmt.Errorf("%w: %s", ErrCoverNotFound, o.Output.Cover)
	}
	return nil
}

// exportsPDF reports whether a PDF is produced.
func (o RenderOptions) exportsPDF() bool {
	return o.Output.PDF == PDFChrome
}

// fingerprint is the part of RenderOptions that changes rendered pages.
// Field order is fixed by the struct.
type fingerprint struct {
	Offline       bool     `yaml:"offline"`
	GitHubAPI     string   `yaml:"githubAPI,omitempty"`
	GitHubContext string   `yaml:"githubContext,omitempty"`
	EmbedImages   bool     `yaml:"embedImages"`
	CSS           []string `yaml:"css"`
	PDF           string   `yaml:"pdf"`
}

// fingerprint includes the endpoint of online when rendering online.
func (o RenderOptions) fingerprint(online *pipeline.GitHubRenderer) fingerprint {
	pdf := o.Output.PDF
	if pdf == "" {
		pdf = PDFDisable
	}
	fp := fingerprint{
		Offline:     o.Renderer.Offline,
		EmbedImages: o.Post.EmbedImages,
		CSS:         normalizeStyles(o.Output.CSS),
		PDF:         string(pdf),
	}
	if !o.Renderer.Offline && online != nil {
		fp.GitHubAPI, fp.GitHubContext = online.Endpoint()
	}
	return fp
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size   string  // "a4" (default), "letter", "legal"
	Margin float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:   PageSizeA4,
		Margin: DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q (must be a4, letter, or legal)", ErrInvalidPageSize, p.Size)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// isValidPageSize checks if size is a known page size (case-insensitive).
// Empty means the default.
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case "", PageSizeA4, PageSizeLetter, PageSizeLegal:
		return true
	}
	return false
}

// Stats counts what a merge did.
type Stats struct {
	Pages     int // pages assembled
	CacheHits int // pages served from the render cache
	Renders   int // pages sent to the Markdown renderer
}

// MergeResult is the outcome of a merge.
type MergeResult struct {
	HTML   []byte   // the merged document
	PDF    []byte   // nil unless the PDF backend is chrome
	Title  string   // title of the entry page
	Pages  []string // page ids in document order
	Assets []string // absolute paths of local images to ship with the HTML
	Stats  Stats
}
