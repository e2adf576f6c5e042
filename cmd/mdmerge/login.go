package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-mdmerge"
)

// ErrLogin is returned when the credential prompt cannot be answered.
var ErrLogin = errors.New("login failed")

// credentialsFor picks the credential source of a run: a token from the
// environment, an interactive prompt with --login, or anonymous access.
func credentialsFor(login bool, token string, env *Environment) mdmerge.CredentialProvider {
	switch {
	case token != "":
		return mdmerge.StaticCredentials{Token: token}
	case login:
		return mdmerge.NewPromptCredentials(promptLogin(env))
	default:
		return nil
	}
}

// promptLogin asks for a GitHub username and password on Stderr/Stdin.
// The prompt runs at most once per process, when the first page needs it.
func promptLogin(env *Environment) func(context.Context) (mdmerge.Credentials, error) {
	return func(context.Context) (mdmerge.Credentials, error) {
		r := bufio.NewReader(env.Stdin)

		fmt.Fprint(env.Stderr, "GitHub username: ")
		user, err := readLine(r)
		if err != nil {
			return mdmerge.Credentials{}, fmt.Errorf("%w: reading username: %v", ErrLogin, err)
		}
		if user == "" {
			return mdmerge.Credentials{}, fmt.Errorf("%w: empty username", ErrLogin)
		}

		fmt.Fprint(env.Stderr, "GitHub password or token: ")
		password, err := env.ReadPassword(r)
		fmt.Fprintln(env.Stderr)
		if err != nil {
			return mdmerge.Credentials{}, fmt.Errorf("%w: reading password: %v", ErrLogin, err)
		}

		return mdmerge.Credentials{Username: user, Password: password}, nil
	}
}

// readLine reads one line without its line ending. A last line without
// newline is accepted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
