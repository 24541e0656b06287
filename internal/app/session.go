package app

import "sync"

// Session is the single shared state container behind the UI: the active
// repository, the full transcript, the compact history sent to the backend as
// conversation context, and the in-flight/error flags. It is constructed empty
// with NewSession and torn down with Reset; callers receive it by injection,
// there is no package-level instance.
//
// The transcript is append-only and the compact history is only ever replaced
// wholesale with a server-provided value, so every mutation here is a single
// atomic whole-value write under the mutex. Accessors hand out copies.
type Session struct {
	mu         sync.Mutex
	repo       *Repository
	transcript []Message
	history    []HistoryEntry
	loading    bool
	typing     bool
	lastErr    error
}

func NewSession() *Session {
	return &Session{}
}

// SetRepository replaces the active repository wholesale. It does not touch
// the transcript or history; Chat.Initialize decides when a new repository
// means a new conversation.
func (s *Session) SetRepository(repo Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo = &repo
}

func (s *Session) Repository() (Repository, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return Repository{}, false
	}
	return *s.repo, true
}

func (s *Session) AddMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msg)
}

func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// SetChatHistory replaces the compact history with a server-provided value.
// The server owns history framing; the store never recomputes or merges it.
func (s *Session) SetChatHistory(history []HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make([]HistoryEntry, len(history))
	copy(s.history, history)
}

func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// ClearChat empties the transcript and compact history but keeps the active
// repository, so the user can start a fresh conversation about the same repo.
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.history = nil
	s.lastErr = nil
}

// Reset is full session teardown: repository, transcript, history and flags
// all return to their initial zero values.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo = nil
	s.transcript = nil
	s.history = nil
	s.loading = false
	s.typing = false
	s.lastErr = nil
}

func (s *Session) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// BeginExchange takes the single in-flight permit. It returns false when an
// exchange is already outstanding; the caller must then reject the send
// without touching the transcript. EndExchange releases the permit.
func (s *Session) BeginExchange() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typing {
		return false
	}
	s.typing = true
	return true
}

func (s *Session) EndExchange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = false
}

func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

func (s *Session) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
