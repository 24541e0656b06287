package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestClientInitializeSendsContractShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/repository/initialize" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		var req InitializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Owner != "octocat" || req.Repo != "hello-world" {
			t.Fatalf("unexpected request: %#v", req)
		}
		json.NewEncoder(w).Encode(InitializeResponse{
			Status:  "success",
			Message: "Repository processed successfully",
			Summary: "Files analyzed: 2",
			Tree:    "└── src/",
		})
	})

	resp, err := c.Initialize(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if resp.Status != "success" || resp.Tree != "└── src/" {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestClientChatHistoryIsTupleEncoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		var raw struct {
			Owner   string      `json:"owner"`
			Repo    string      `json:"repo"`
			Query   string      `json:"query"`
			History [][2]string `json:"history"`
		}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("history is not an array of pairs: %v", err)
		}
		if len(raw.History) != 1 || raw.History[0][0] != "q1" || raw.History[0][1] != "r1" {
			t.Fatalf("unexpected history payload: %#v", raw.History)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "answer",
			"history":  [][2]string{{"q1", "r1"}, {raw.Query, "answer"}},
		})
	})

	resp, err := c.Chat(context.Background(), "octocat", "hello-world", "q2", []HistoryEntry{{Query: "q1", Response: "r1"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(resp.History) != 2 || resp.History[1].Query != "q2" || resp.History[1].Response != "answer" {
		t.Fatalf("returned history not decoded from tuples: %#v", resp.History)
	}
}

func TestClientChatSendsEmptyArrayForNilHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(raw["history"]) != "[]" {
			t.Fatalf("history payload = %s, want []", raw["history"])
		}
		json.NewEncoder(w).Encode(ChatResponse{Response: "ok", History: []HistoryEntry{}})
	})

	if _, err := c.Chat(context.Background(), "o", "r", "q", nil); err != nil {
		t.Fatalf("chat: %v", err)
	}
}

func TestClientSurfacesDetailVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Repository not found"})
	})

	_, err := c.Initialize(context.Background(), "octocat", "missing")
	if err == nil {
		t.Fatalf("expected an error")
	}
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error is not a BackendError: %T", err)
	}
	if be.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", be.StatusCode)
	}
	if err.Error() != "Repository not found" {
		t.Fatalf("detail not surfaced verbatim: %q", err.Error())
	}
}

func TestClientFallsBackToStatusText(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		want string
	}{
		{
			name: "initialize",
			call: func(c *Client) error {
				_, err := c.Initialize(context.Background(), "o", "r")
				return err
			},
			want: "Failed to initialize repository: Bad Gateway",
		},
		{
			name: "chat",
			call: func(c *Client) error {
				_, err := c.Chat(context.Background(), "o", "r", "q", nil)
				return err
			},
			want: "Failed to get chat response: Bad Gateway",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("upstream exploded"))
			})
			err := tc.call(c)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestClientHealthcheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if err := c.Healthcheck(context.Background()); err != nil {
		t.Fatalf("healthcheck: %v", err)
	}
}
