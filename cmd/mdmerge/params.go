package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-mdmerge"
	"github.com/alnah/go-mdmerge/internal/config"
	"github.com/alnah/go-mdmerge/internal/fileutil"
)

// Sentinel errors for command-line validation.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoRepoRoot       = errors.New("repository root is required")
	ErrStdoutNeedsEmbed = errors.New("writing to stdout requires --embed")
	ErrOutputExtension  = errors.New("output extension does not match the output format")
	ErrLoginOffline     = errors.New("--login and --offline are mutually exclusive")
	ErrCSSNotFound      = errors.New("stylesheet not found")
	ErrInvalidTimeout   = errors.New("invalid timeout")
)

// stdoutPath selects standard output.
const stdoutPath = "-"

// defaultStyleAlias is accepted for the builtin main stylesheet.
const defaultStyleAlias = "default"

// runParams is the resolved state of one invocation.
type runParams struct {
	input   mdmerge.Input
	opts    mdmerge.RenderOptions
	out     string // stdoutPath or a file path
	timeout time.Duration

	cacheDir      string
	excludes      []string
	assetPath     string
	githubURL     string
	githubContext string

	login bool
	watch bool
	quiet bool
}

// toStdout reports whether the output goes to standard output.
func (p *runParams) toStdout() bool {
	return p.out == stdoutPath
}

// mergeFlags merges command-line flags into config. Flags win.
func mergeFlags(flags *mergeFlagSet, cfg *config.Config) {
	if flags.entry != "" {
		cfg.Entry = flags.entry
	}

	// Render flags
	if flags.render.offline {
		cfg.Render.Offline = true
	}
	if flags.render.embed {
		cfg.Render.Embed = true
	}
	if flags.render.timeout != "" {
		cfg.Render.Timeout = flags.render.timeout
	}

	// Output flags
	if flags.output.path != "" {
		cfg.Output.Path = flags.output.path
	}
	if flags.output.pdf != "" {
		cfg.Output.PDF = flags.output.pdf
	}
	if flags.output.mainCSS != "" {
		cfg.Output.MainCSS = flags.output.mainCSS
	}
	if len(flags.output.css) > 0 {
		cfg.Output.CSS = flags.output.css
	}
	if flags.output.cover != "" {
		cfg.Output.Cover = flags.output.cover
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.changed != nil && flags.changed("margin") {
		cfg.Page.Margin = flags.page.margin
	}

	if flags.cacheDir != "" {
		cfg.Cache.Dir = flags.cacheDir
	}
	if len(flags.excludes) > 0 {
		cfg.Links.Exclude = append(slices.Clone(cfg.Links.Exclude), flags.excludes...)
	}
}

// resolveParams builds and validates the run parameters from positional
// args, flags and the merged config.
func resolveParams(args []string, flags *mergeFlagSet, cfg *config.Config) (*runParams, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, ErrNoRepoRoot
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, args[1:])
	}

	if flags.render.login && cfg.Render.Offline {
		return nil, ErrLoginOffline
	}

	pdf := mdmerge.PDFBackend(strings.ToLower(cfg.Output.PDF))
	if pdf == "" {
		pdf = mdmerge.PDFDisable
	}
	if pdf != mdmerge.PDFDisable && pdf != mdmerge.PDFChrome {
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", mdmerge.ErrInvalidPDFBackend, cfg.Output.PDF, mdmerge.PDFDisable, mdmerge.PDFChrome)
	}

	out, err := resolveOutputPath(cfg.Output.Path, pdf, cfg.Render.Embed)
	if err != nil {
		return nil, err
	}

	css, err := resolveStyles(cfg.Output.MainCSS, cfg.Output.CSS)
	if err != nil {
		return nil, err
	}

	if cfg.Output.Cover != "" && !fileutil.FileExists(cfg.Output.Cover) {
		return nil, fmt.Errorf("%w: %s", mdmerge.ErrCoverNotFound, cfg.Output.Cover)
	}

	timeout, err := resolveTimeout(cfg.Render.Timeout)
	if err != nil {
		return nil, err
	}

	params := &runParams{
		input: mdmerge.Input{RepoRoot: args[0], Entry: cfg.Entry},
		opts: mdmerge.RenderOptions{
			Renderer: mdmerge.RendererSettings{Offline: cfg.Render.Offline},
			Post:     mdmerge.PostSettings{EmbedImages: cfg.Render.Embed},
			Output: mdmerge.OutputSettings{
				CSS:   css,
				PDF:   pdf,
				Page:  buildPageSettings(cfg, flags.changed != nil && flags.changed("margin")),
				Cover: cfg.Output.Cover,
			},
		},
		out:           out,
		timeout:       timeout,
		cacheDir:      cfg.Cache.Dir,
		excludes:      cfg.Links.Exclude,
		assetPath:     cfg.Assets.BasePath,
		githubURL:     cfg.GitHub.APIURL,
		githubContext: cfg.GitHub.Context,
		login:         flags.render.login,
		watch:         flags.watch,
		quiet:         flags.common.quiet,
	}
	if err := params.opts.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// resolveOutputPath checks the output against the output format and appends
// the format extension when the path has none.
func resolveOutputPath(path string, pdf mdmerge.PDFBackend, embed bool) (string, error) {
	if path == "" {
		path = stdoutPath
	}
	if path == stdoutPath {
		if !embed && pdf == mdmerge.PDFDisable {
			return "", ErrStdoutNeedsEmbed
		}
		return path, nil
	}

	want := ".html"
	if pdf == mdmerge.PDFChrome {
		want = ".pdf"
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "":
		return path + want, nil
	case want:
		return path, nil
	default:
		return "", fmt.Errorf("%w: %s (want %s)", ErrOutputExtension, path, want)
	}
}

// resolveStyles returns the stylesheet references in order, main first.
// Local stylesheets must exist.
func resolveStyles(mainCSS string, extra []string) ([]string, error) {
	if mainCSS == "" || strings.EqualFold(mainCSS, defaultStyleAlias) {
		mainCSS = mdmerge.BuiltinStyle
	}

	css := append([]string{mainCSS}, extra...)
	for _, ref := range css {
		if ref == mdmerge.BuiltinStyle || fileutil.IsURL(ref) {
			continue
		}
		if !fileutil.FileExists(ref) {
			return nil, fmt.Errorf("%w: %s", ErrCSSNotFound, ref)
		}
	}
	return css, nil
}

// resolveTimeout parses a Go duration. Empty means the library default.
func resolveTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, s)
	}
	return d, nil
}

// buildPageSettings returns PDF page settings, or nil for the defaults.
// A zero margin from the config file means the default; an explicit
// --margin 0 removes the margin.
func buildPageSettings(cfg *config.Config, marginSet bool) *mdmerge.PageSettings {
	if cfg.Page.Size == "" && cfg.Page.Margin == 0 && !marginSet {
		return nil
	}
	page := mdmerge.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = strings.ToLower(cfg.Page.Size)
	}
	if cfg.Page.Margin > 0 || marginSet {
		page.Margin = cfg.Page.Margin
	}
	return page
}
