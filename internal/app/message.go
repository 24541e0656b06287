package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	SourceCode       = "code"
	SourceIssue      = "issue"
	SourceDiscussion = "discussion"
)

// Source is a citation attached to an assistant message. The Type field
// discriminates the payload: code sources carry file/line/snippet, issue and
// discussion sources carry title/url. A Source lives and dies with its message.
type Source struct {
	Type      string `json:"type"`
	File      string `json:"file,omitempty"`
	LineStart int    `json:"lineStart,omitempty"`
	LineEnd   int    `json:"lineEnd,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Message is one transcript entry. Messages are immutable once created and the
// transcript is append-only; identity is the ID, chronology is the Timestamp.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(content string, sources []Source) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now(),
	}
}

// HistoryEntry is one (query, response) pair of the compact history exchanged
// with the backend. On the wire it is a two-element JSON array, not an object;
// the custom codec keeps that shape stable.
type HistoryEntry struct {
	Query    string
	Response string
}

func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Query, e.Response})
}

func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("history entry must be a [query, response] pair, got %d elements", len(pair))
	}
	e.Query = pair[0]
	e.Response = pair[1]
	return nil
}
