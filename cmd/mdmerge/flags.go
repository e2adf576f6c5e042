package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags that shape the run rather than the document.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	version bool
}

// renderFlags select the Markdown renderer.
type renderFlags struct {
	offline bool
	login   bool
	embed   bool
	timeout string
}

// outputFlags describe the merged artifact.
type outputFlags struct {
	path    string
	pdf     string
	mainCSS string
	css     []string
	cover   string
}

// pageFlags holds PDF page layout flags.
type pageFlags struct {
	size   string
	margin float64
}

// mergeFlagSet holds every flag of the command.
type mergeFlagSet struct {
	common   commonFlags
	render   renderFlags
	output   outputFlags
	page     pageFlags
	entry    string
	cacheDir string
	excludes []string
	watch    bool

	// changed reports whether a flag was set on the command line.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every page")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
}

// addRenderFlags adds renderer flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.offline, "offline", false, "render locally instead of through the GitHub API")
	fs.BoolVar(&f.login, "login", false, "prompt for GitHub credentials")
	fs.BoolVar(&f.embed, "embed", false, "embed images as data URIs")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "merge timeout (e.g., 30s, 2m)")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "out", "o", "", "output file, or - for stdout (default -)")
	fs.StringVar(&f.pdf, "pdf", "", "PDF backend: disable, chrome (default disable)")
	fs.StringVar(&f.mainCSS, "main-css", "", "main stylesheet: builtin, URL or path (default builtin)")
	fs.StringArrayVar(&f.css, "css", nil, "extra stylesheet URL or path (repeatable)")
	fs.StringVar(&f.cover, "cover", "", "cover image for PDF output")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0-3.0)")
}

// parseFlags parses the command line and returns positional args.
// args excludes the program name.
func parseFlags(args []string, usage io.Writer) (*mergeFlagSet, []string, error) {
	fs := flag.NewFlagSet("mdmerge", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &mergeFlagSet{}

	fs.StringVar(&f.entry, "entry", "", "entry page relative to the repository (default README.md)")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "render cache directory")
	fs.StringArrayVar(&f.excludes, "exclude", nil, "glob of pages not to follow (repeatable)")
	fs.BoolVarP(&f.watch, "watch", "w", false, "merge again when files change")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addOutputFlags(fs, &f.output)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.changed = fs.Changed

	return f, fs.Args(), nil
}
