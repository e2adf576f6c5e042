package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// GitHubRenderer renders Markdown through the GitHub Markdown API (online
// mode), producing the same HTML github.com shows for a file.
type GitHubRenderer struct {
	client  *http.Client
	baseURL string
	repo    string // "owner/name" context for issue and user references
	limiter *rate.Limiter
}

// Compile-time interface check.
var _ MarkdownRenderer = (*GitHubRenderer)(nil)

// GitHubOption configures a GitHubRenderer.
type GitHubOption func(*GitHubRenderer)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) GitHubOption {
	return func(g *GitHubRenderer) {
		if c != nil {
			g.client = c
		}
	}
}

// WithBaseURL points the renderer at another API root (GitHub Enterprise, tests).
func WithBaseURL(u string) GitHubOption {
	return func(g *GitHubRenderer) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRepoContext sets the "owner/name" context used to resolve #123 and @user.
func WithRepoContext(repo string) GitHubOption {
	return func(g *GitHubRenderer) {
		g.repo = repo
	}
}

// WithRateLimit caps API calls to r per second with the given burst.
func WithRateLimit(r float64, burst int) GitHubOption {
	return func(g *GitHubRenderer) {
		g.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// NewGitHubRenderer creates a GitHubRenderer. Defaults: api.github.com,
// 30s HTTP timeout, 5 requests per second.
func NewGitHubRenderer(opts ...GitHubOption) *GitHubRenderer {
	g := &GitHubRenderer{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultGitHubAPI,
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Endpoint returns the API root and repository context rendered against.
// Both change the HTML of a page.
func (g *GitHubRenderer) Endpoint() (baseURL, repo string) {
	return g.baseURL, g.repo
}

// markdownRequest is the body of POST /markdown.
type markdownRequest struct {
	Text    string `json:"text"`
	Mode    string `json:"mode"`
	Context string `json:"context,omitempty"`
}

// apiError is GitHub's error payload.
type apiError struct {
	Message string `json:"message"`
}

// RenderPage posts the file content to the Markdown API. Credentials are
// requested from opts.Credentials only when a request is about to be made.
func (g *GitHubRenderer) RenderPage(ctx context.Context, path string, opts RendererOptions) (string, error) {
	source, err := os.ReadFile(path) // #nosec G304 -- path resolved under the repo root
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var creds Credentials
	if opts.Credentials != nil {
		creds, err = opts.Credentials.Credentials(ctx)
		if err != nil {
			return "", fmt.Errorf("obtaining credentials: %w", err)
		}
	}

	body, err := json.Marshal(markdownRequest{
		Text:    normalizeLineEndings(string(source)),
		Mode:    "gfm",
		Context: g.repo,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/markdown", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	switch {
	case creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	case creds.Username != "":
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailure, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s", ErrRenderFailure, path, errorMessage(resp))
	}

	fragment, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: reading response: %v", ErrRenderFailure, path, err)
	}
	return wrapArticle(string(fragment), path), nil
}

// errorMessage extracts a readable message from a non-200 response.
func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(data))
	var payload apiError
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		msg += " (rate limit exhausted)"
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, msg)
}
