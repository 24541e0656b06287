package app

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyQuery rejects a send before any session mutation happens.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNoRepository rejects a send when no repository has been initialized.
	ErrNoRepository = errors.New("no active repository")
	// ErrExchangeInFlight rejects a send while another one is outstanding.
	ErrExchangeInFlight = errors.New("an exchange is already in flight")
)

// Chat drives the send-exchange protocol against a Session and the backend.
// One Chat serves one Session.
type Chat struct {
	Session *Session
	Backend Collaborator
	Logger  *Logger
}

func NewChat(session *Session, backend Collaborator, logger *Logger) *Chat {
	return &Chat{Session: session, Backend: backend, Logger: logger}
}

// Initialize resolves user input into a repository, asks the backend to ingest
// it, and installs it as the session's active repository. A new repository
// starts a fresh conversation: the transcript and compact history are cleared
// once initialization succeeds. On failure the session keeps its previous
// repository (if any) and records the error, so the UI stays on the picker.
func (c *Chat) Initialize(ctx context.Context, input string) (*Repository, error) {
	repo, err := ParseRepoInput(input)
	if err != nil {
		return nil, err
	}

	c.Session.SetLoading(true)
	defer c.Session.SetLoading(false)

	resp, err := c.Backend.Initialize(ctx, repo.Owner, repo.Name)
	if err != nil {
		c.Session.SetError(err)
		return nil, err
	}

	repo.Summary = resp.Summary
	repo.Tree = resp.Tree
	c.Session.ClearChat()
	c.Session.SetRepository(repo)
	c.Session.SetError(nil)

	if c.Logger != nil {
		c.Logger.Info("repository initialized", map[string]interface{}{
			"repo":    repo.URL,
			"message": resp.Message,
		})
	}
	return &repo, nil
}

// Send runs one exchange as a two-phase commit.
//
// Phase 1 is local and always succeeds once the guards pass: the trimmed query
// is appended to the transcript as a user message before any network work, so
// the user's input survives a failed exchange. Phase 2 issues exactly one
// request; on success the assistant reply is appended and the compact history
// is replaced with the server's value, on failure an error message is appended
// in its place and the history is left untouched. There is no retry and no
// second send while the exchange is outstanding.
func (c *Chat) Send(ctx context.Context, query string) (Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Message{}, ErrEmptyQuery
	}
	repo, ok := c.Session.Repository()
	if !ok {
		return Message{}, ErrNoRepository
	}
	if !c.Session.BeginExchange() {
		return Message{}, ErrExchangeInFlight
	}
	defer c.Session.EndExchange()

	c.Session.AddMessage(NewUserMessage(query))
	history := c.Session.History()

	resp, err := c.Backend.Chat(ctx, repo.Owner, repo.Name, query, history)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("chat exchange failed", map[string]interface{}{
				"repo":  repo.URL,
				"error": err.Error(),
			})
		}
		c.Session.SetError(err)
		failure := NewAssistantMessage("Sorry, I couldn't answer that: "+err.Error(), nil)
		c.Session.AddMessage(failure)
		return failure, err
	}

	reply := NewAssistantMessage(resp.Response, nil)
	c.Session.AddMessage(reply)
	c.Session.SetChatHistory(resp.History)
	c.Session.SetError(nil)
	return reply, nil
}
