package crawl

import (
	"errors"
	"fmt"
)

// Sentinel errors for traversal and assembly.
var (
	// ErrSourceNotFound indicates a page or referenced image is missing on disk.
	ErrSourceNotFound = errors.New("source not found")

	// ErrBrokenLink indicates a Markdown link whose target page does not exist.
	ErrBrokenLink = errors.New("broken link")

	// ErrOutsideRepo indicates a path that resolves outside the repository root.
	ErrOutsideRepo = errors.New("path outside repository")

	// ErrAlreadyRun indicates Run was called on a crawler that already ran.
	ErrAlreadyRun = errors.New("crawler already ran")
)

// PageError attaches the failing page to an error raised while processing it.
type PageError struct {
	Page string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
