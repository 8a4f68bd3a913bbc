// Package analysis wraps the external code-analysis service: asynchronous
// repository indexing plus natural-language questions over the indexed code.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"repocast/internal/models"
)

// Answer is one reply from the analysis service. SourcePaths is the
// structured list of repository paths the service cites for its answer;
// it may be empty and is never derived locally.
type Answer struct {
	Text        string   `json:"text"`
	SourcePaths []string `json:"source_paths"`
}

// Client talks JSON-over-HTTP to the analysis service.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient returns a ready-to-use analysis client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 60 * time.Second, // high-fidelity questions are slow
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// SubmitForIndexing asks the service to (re)index the repository.
// The call returns as soon as the service acknowledges the submission.
func (c *Client) SubmitForIndexing(ctx context.Context, ref models.RepoRef) error {
	body := map[string]string{
		"owner":  ref.Owner,
		"name":   ref.Name,
		"branch": ref.Branch,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/repositories", body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetIndexStatus reports the service's current view of the repository.
// An unindexed repository comes back as IndexUnknown rather than an error.
func (c *Client) GetIndexStatus(ctx context.Context, ref models.RepoRef) (models.IndexState, error) {
	path := fmt.Sprintf("/repositories/%s/%s/%s",
		url.PathEscape(ref.Owner), url.PathEscape(ref.Name), url.PathEscape(ref.Branch))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return models.IndexState{}, err
	}

	var out struct {
		Status         string `json:"status"`
		FilesProcessed int    `json:"files_processed"`
	}
	if err := c.do(req, &out); err != nil {
		if isNotFound(err) {
			return models.IndexState{Status: models.IndexUnknown}, nil
		}
		return models.IndexState{}, err
	}

	status := models.IndexStatus(out.Status)
	switch status {
	case models.IndexSubmitted, models.IndexProcessing, models.IndexCompleted, models.IndexFailed:
	default:
		status = models.IndexUnknown
	}
	return models.IndexState{Status: status, FilesProcessed: out.FilesProcessed}, nil
}

// Ask poses one natural-language question against the indexed repository.
// sessionID ties consecutive questions into one conversational context;
// highFidelity selects the slower, more thorough query mode.
func (c *Client) Ask(ctx context.Context, ref models.RepoRef, question, sessionID string, highFidelity bool) (Answer, error) {
	body := map[string]any{
		"owner":      ref.Owner,
		"name":       ref.Name,
		"branch":     ref.Branch,
		"question":   question,
		"session_id": sessionID,
		"genius":     highFidelity,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/query", body)
	if err != nil {
		return Answer{}, err
	}

	var out struct {
		Answer  string `json:"answer"`
		Sources []struct {
			Filepath string `json:"filepath"`
		} `json:"sources"`
	}
	if err := c.do(req, &out); err != nil {
		return Answer{}, err
	}

	ans := Answer{Text: out.Answer}
	for _, s := range out.Sources {
		if s.Filepath != "" {
			ans.SourcePaths = append(ans.SourcePaths, s.Filepath)
		}
	}
	return ans, nil
}

// ---- HTTP plumbing ---------------------------------------------------------

// newRequest builds a JSON request with auth headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("User-Agent", "repocast-api")
	return req, nil
}

// statusError carries the HTTP status for isNotFound checks.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("analysis: unexpected status %s", e.status)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

// do executes the HTTP request and decodes JSON into v (when v is non-nil).
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
