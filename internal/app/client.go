package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Collaborator is the remote analysis/chat service as seen by the session
// core. Only the request/response contract matters here; tests substitute
// their own implementation.
type Collaborator interface {
	Initialize(ctx context.Context, owner, repo string) (*InitializeResponse, error)
	Chat(ctx context.Context, owner, repo, query string, history []HistoryEntry) (*ChatResponse, error)
}

type InitializeRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

type InitializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Summary string `json:"summary"`
	Tree    string `json:"tree"`
}

type ChatRequest struct {
	Owner   string         `json:"owner"`
	Repo    string         `json:"repo"`
	Query   string         `json:"query"`
	History []HistoryEntry `json:"history"`
}

type ChatResponse struct {
	Response string         `json:"response"`
	History  []HistoryEntry `json:"history"`
}

// BackendError is a non-2xx reply from the backend. When the error body
// carried a detail field its text is surfaced verbatim; otherwise the
// operation-specific fallback built from the HTTP status text is used.
type BackendError struct {
	StatusCode int
	Detail     string
	fallback   string
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.fallback
}

// Client talks to the gitchat backend over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *Client) Initialize(ctx context.Context, owner, repo string) (*InitializeResponse, error) {
	if c.Logger != nil {
		c.Logger.Info("initializing repository", map[string]interface{}{"owner": owner, "repo": repo})
	}
	var out InitializeResponse
	err := c.postJSON(ctx, "/api/repository/initialize",
		InitializeRequest{Owner: owner, Repo: repo},
		&out,
		"Failed to initialize repository")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Chat(ctx context.Context, owner, repo, query string, history []HistoryEntry) (*ChatResponse, error) {
	if history == nil {
		// The backend expects an array, not null.
		history = []HistoryEntry{}
	}
	var out ChatResponse
	err := c.postJSON(ctx, "/api/chat",
		ChatRequest{Owner: owner, Repo: repo, Query: query, History: history},
		&out,
		"Failed to get chat response")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Healthcheck verifies the backend is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthcheck", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("backend unhealthy: %s", http.StatusText(resp.StatusCode))
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}, failurePrefix string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v", failurePrefix, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %v", failurePrefix, err)
	}

	if resp.StatusCode >= 300 {
		var errBody struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &errBody)
		if c.Logger != nil {
			c.Logger.Error("backend request failed", map[string]interface{}{
				"path":   path,
				"status": resp.StatusCode,
				"detail": errBody.Detail,
			})
		}
		return &BackendError{
			StatusCode: resp.StatusCode,
			Detail:     errBody.Detail,
			fallback:   fmt.Sprintf("%s: %s", failurePrefix, http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: invalid response body: %v", failurePrefix, err)
	}
	return nil
}
