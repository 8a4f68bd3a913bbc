package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"repocast/internal/models"
)

// ErrNotFound is returned when the requested path does not exist on the
// requested branch.
var ErrNotFound = errors.New("github: file not found")

// ErrInvalidRepoURL is returned by ParseRepoURL for input that cannot be
// resolved to an owner/name pair. No network calls are made before this check.
var ErrInvalidRepoURL = errors.New("github: invalid repository url")

// Client is a minimal wrapper around GitHub's raw-content endpoint.
// It is intentionally light—just the two calls the citation pipeline requires.
type Client struct {
	http    *http.Client
	token   string
	baseURL string // override in tests; defaults to raw.githubusercontent.com
}

// NewClient returns a ready-to-use content client.
// token may be an empty string, but you will be subject to very low rate-limits.
func NewClient(token string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		token:   token,
		baseURL: "https://raw.githubusercontent.com",
	}
}

// NewClientWithBaseURL is NewClient with the endpoint overridden (tests).
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// repoURLPattern accepts https://github.com/{owner}/{name} with optional
// ".git", optional "/tree/{branch}" and an optional trailing slash.
var repoURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/\s]+)/([^/\s]+?)(?:\.git)?(?:/tree/([^/\s]+))?/?$`)

// shorthandPattern accepts the bare "owner/name" form.
var shorthandPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)

// ParseRepoURL converts a repository URL (or "owner/name" shorthand) into a
// RepoRef. Pure function, no I/O. The branch defaults to "main" unless the
// URL carries a /tree/{branch} segment.
func ParseRepoURL(rawURL string) (models.RepoRef, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return models.RepoRef{}, fmt.Errorf("%w: empty input", ErrInvalidRepoURL)
	}

	if m := repoURLPattern.FindStringSubmatch(trimmed); m != nil {
		ref := models.RepoRef{Owner: m[1], Name: m[2], Branch: m[3]}
		if ref.Branch == "" {
			ref.Branch = "main"
		}
		return ref, nil
	}

	if m := shorthandPattern.FindStringSubmatch(trimmed); m != nil {
		return models.RepoRef{Owner: m[1], Name: m[2], Branch: "main"}, nil
	}

	return models.RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepoURL, rawURL)
}

// FetchFile retrieves the raw bytes of path on ref's branch.
// A 404 maps to ErrNotFound so callers can distinguish "missing" from "broken".
func (c *Client) FetchFile(ctx context.Context, ref models.RepoRef, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, ref, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("github: unexpected status %s for %s", resp.Status, path)
	}

	return io.ReadAll(resp.Body)
}

// Exists probes path on ref's branch without downloading the content.
func (c *Client) Exists(ctx context.Context, ref models.RepoRef, path string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, ref, path)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("github: probe %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, fmt.Errorf("github: unexpected status %s for %s", resp.Status, path)
	}
	return true, nil
}

// newRequest builds a raw-content request with auth headers applied.
func (c *Client) newRequest(ctx context.Context, method string, ref models.RepoRef, path string) (*http.Request, error) {
	u := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.baseURL,
		url.PathEscape(ref.Owner),
		url.PathEscape(ref.Name),
		url.PathEscape(ref.Branch),
		strings.TrimPrefix(path, "/"))

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return req, nil
}

// addHeaders sets authentication and User-Agent headers.
func (c *Client) addHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "repocast-api")
}
