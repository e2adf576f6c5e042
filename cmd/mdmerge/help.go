package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmerge <repo_root> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge the Markdown pages reachable from an entry page into one HTML or PDF file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  repo_root    Directory holding the Markdown pages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "      --entry <path>         Entry page (default: README.md)")
	fmt.Fprintln(w, "      --exclude <glob>       Pages not to follow, e.g. drafts/** (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --offline              Render locally instead of through the GitHub API")
	fmt.Fprintln(w, "      --login                Prompt for GitHub credentials")
	fmt.Fprintln(w, "      --embed                Embed images as data URIs")
	fmt.Fprintln(w, "  -t, --timeout <duration>   Merge timeout (default: 2m)")
	fmt.Fprintln(w, "      --cache-dir <dir>      Render cache directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --out <path>           Output file, or - for stdout (default: -)")
	fmt.Fprintln(w, "      --pdf <backend>        disable, chrome (default: disable)")
	fmt.Fprintln(w, "      --main-css <ref>       builtin, URL or path (default: builtin)")
	fmt.Fprintln(w, "      --css <ref>            Extra stylesheet URL or path (repeatable)")
	fmt.Fprintln(w, "      --cover <path>         Cover image for PDF output")
	fmt.Fprintln(w, "  -p, --page-size <size>     a4, letter, legal (default: a4)")
	fmt.Fprintln(w, "      --margin <inches>      Page margin, 0-3.0 (default: 0.54)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w, "  -w, --watch                Merge again when files change")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Log every page")
	fmt.Fprintln(w, "      --version              Print version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDMERGE_CONFIG             Config file name or path")
	fmt.Fprintln(w, "  MDMERGE_CACHE_DIR          Render cache directory")
	fmt.Fprintln(w, "  MDMERGE_GITHUB_TOKEN       GitHub token for the Markdown API")
	fmt.Fprintln(w, "  MDMERGE_TIMEOUT            Merge timeout")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN            Chrome binary for --pdf chrome")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX             Set to 1 to run Chrome without sandbox")
}
