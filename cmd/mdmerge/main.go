// Command mdmerge merges the Markdown pages of a repository into one HTML or
// PDF document.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parsed again by run; errors are reported there.
	flags, _, _ := parseFlags(os.Args[1:], io.Discard)
	verbose := flags != nil && flags.common.verbose

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	err := run(ctx, os.Args[1:], DefaultEnv())
	stop()

	if err != nil {
		loggedIn := os.Getenv("MDMERGE_GITHUB_TOKEN") != "" || (flags != nil && flags.render.login)
		fmt.Fprintf(os.Stderr, "error: %v%s\n", err, hintFor(err, loggedIn))
		os.Exit(exitCodeFor(err))
	}
}
