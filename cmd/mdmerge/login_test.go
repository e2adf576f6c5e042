package main

// Notes:
// - promptLogin: Stdin and ReadPassword are injected; the terminal path of
//   readTerminalPassword needs a TTY and is not tested.
// - credentialsFor: a token wins over --login.

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-mdmerge"
)

func lineReader(r *bufio.Reader) (string, error) {
	return readLine(r)
}

// ---------------------------------------------------------------------------
// TestPromptLogin - Interactive credentials
// ---------------------------------------------------------------------------

func TestPromptLogin(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	env := &Environment{
		Stdin:        strings.NewReader("octocat\r\nhunter2\n"),
		Stderr:       &stderr,
		ReadPassword: lineReader,
	}

	creds, err := promptLogin(env)(context.Background())
	if err != nil {
		t.Fatalf("promptLogin: %v", err)
	}
	if creds.Username != "octocat" || creds.Password != "hunter2" {
		t.Errorf("creds = %+v, want octocat/hunter2", creds)
	}
	if !strings.Contains(stderr.String(), "GitHub username: ") {
		t.Errorf("prompt not shown, stderr = %q", stderr.String())
	}
}

func TestPromptLogin_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		stdin string
	}{
		{"no input", ""},
		{"empty username", "\nsecret\n"},
		{"missing password", "octocat\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := &Environment{
				Stdin:        strings.NewReader(tt.stdin),
				Stderr:       &bytes.Buffer{},
				ReadPassword: lineReader,
			}
			_, err := promptLogin(env)(context.Background())
			if !errors.Is(err, ErrLogin) {
				t.Errorf("error = %v, want ErrLogin", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCredentialsFor - Credential source selection
// ---------------------------------------------------------------------------

func TestCredentialsFor(t *testing.T) {
	t.Parallel()

	env := &Environment{Stdin: strings.NewReader(""), Stderr: &bytes.Buffer{}, ReadPassword: lineReader}

	if got := credentialsFor(false, "", env); got != nil {
		t.Errorf("anonymous: got %T, want nil", got)
	}

	got := credentialsFor(true, "ghp_token", env)
	static, ok := got.(mdmerge.StaticCredentials)
	if !ok || static.Token != "ghp_token" {
		t.Errorf("token: got %#v, want StaticCredentials with token", got)
	}

	if _, ok := credentialsFor(true, "", env).(*mdmerge.PromptCredentials); !ok {
		t.Errorf("login: want *PromptCredentials")
	}
}
