package main

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/alnah/go-mdmerge"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ReadPassword reads a secret without echo. r holds the rest of Stdin.
	ReadPassword func(r *bufio.Reader) (string, error)

	// MergerOptions are appended to the options built from flags.
	MergerOptions []mdmerge.Option
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		ReadPassword: readTerminalPassword,
	}
}

// readTerminalPassword disables echo when stdin is a terminal and falls back
// to reading a plain line otherwise, so piped input keeps working.
func readTerminalPassword(r *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	return readLine(r)
}
