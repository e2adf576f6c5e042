package mdmerge

import (
	"context"
	"sync"
)

// Compile-time interface checks.
var (
	_ CredentialProvider = (*PromptCredentials)(nil)
	_ CredentialProvider = StaticCredentials{}
)

// PromptCredentials asks for credentials once, the first time a renderer
// needs them, and returns the same answer afterwards.
type PromptCredentials struct {
	prompt func(ctx context.Context) (Credentials, error)

	once  sync.Once
	creds Credentials
	err   error
}

// NewPromptCredentials wraps prompt, typically an interactive login.
func NewPromptCredentials(prompt func(ctx context.Context) (Credentials, error)) *PromptCredentials {
	return &PromptCredentials{prompt: prompt}
}

// Credentials runs the prompt on first use.
func (p *PromptCredentials) Credentials(ctx context.Context) (Credentials, error) {
	p.once.Do(func() {
		p.creds, p.err = p.prompt(ctx)
	})
	return p.creds, p.err
}

// StaticCredentials are fixed credentials, such as a token from the
// environment.
type StaticCredentials Credentials

// Credentials returns c.
func (c StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(c), nil
}
