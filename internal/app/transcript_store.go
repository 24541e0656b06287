package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TranscriptStore keeps finished conversations as JSON on disk, one file per
// repository, so a past chat can be reviewed after the session is gone. The
// in-memory Session stays the source of truth; saving is best-effort and the
// session core never depends on this store.
//
// Layout: <root>/<owner>__<name>.json
type TranscriptStore struct {
	Root string
}

type TranscriptRecord struct {
	Repository Repository `json:"repository"`
	Messages   []Message  `json:"messages"`
	SavedAt    time.Time  `json:"saved_at"`
}

func DefaultTranscriptRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "gitchat", "transcripts")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "gitchat", "transcripts")
	}
	return filepath.Join(os.TempDir(), "gitchat", "transcripts")
}

func NewTranscriptStore(root string) *TranscriptStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultTranscriptRoot()
	}
	return &TranscriptStore{Root: root}
}

func (s *TranscriptStore) path(owner, name string) string {
	return filepath.Join(s.Root, fmt.Sprintf("%s__%s.json", owner, name))
}

func (s *TranscriptStore) Save(repo Repository, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	rec := TranscriptRecord{
		Repository: repo,
		Messages:   messages,
		SavedAt:    time.Now(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(repo.Owner, repo.Name), data, 0o644)
}

func (s *TranscriptStore) Load(owner, name string) (*TranscriptRecord, error) {
	data, err := os.ReadFile(s.path(owner, name))
	if err != nil {
		return nil, err
	}
	var rec TranscriptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the owner/name keys of every saved transcript, sorted.
func (s *TranscriptStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok {
			continue
		}
		owner, name, ok := strings.Cut(base, "__")
		if !ok {
			continue
		}
		keys = append(keys, owner+"/"+name)
	}
	sort.Strings(keys)
	return keys, nil
}
