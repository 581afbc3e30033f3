// Package session persists the chat identity shared by the LLM modes.
// One conversation spans ragbot, mancia and the verbetopedia definition
// step; the id lives in a small TOML state file so it survives restarts.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

type state struct {
	ChatID    string    `toml:"chat_id"`
	CreatedAt time.Time `toml:"created_at"`
}

// Store manages the persisted chat id. Safe for concurrent use; the
// LLM modes share one conversation, so concurrent callers must observe
// one consistent id.
type Store struct {
	mu   sync.Mutex
	path string
	st   state
}

// NewStore opens the session store backed by the given file, loading
// the existing state when present.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if err := toml.Unmarshal(data, &s.st); err != nil {
		// A corrupt state file is not worth failing over; start fresh.
		s.st = state{}
	}
	return s, nil
}

// GetOrCreate returns the current chat id, minting and persisting a new
// one when none exists.
func (s *Store) GetOrCreate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.ChatID != "" {
		return s.st.ChatID, nil
	}
	s.st = state{ChatID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := s.save(); err != nil {
		return "", err
	}
	return s.st.ChatID, nil
}

// Adopt stores a server-assigned chat id, replacing the local one. An
// empty id is ignored.
func (s *Store) Adopt(id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.ChatID == id {
		return nil
	}
	s.st = state{ChatID: id, CreatedAt: time.Now().UTC()}
	return s.save()
}

// Reset mints a fresh chat id, abandoning the previous conversation,
// and returns both ids so the caller can tell the backend to drop the
// old session.
func (s *Store) Reset() (old, fresh string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old = s.st.ChatID
	s.st = state{ChatID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := s.save(); err != nil {
		return "", "", err
	}
	return old, s.st.ChatID, nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := toml.Marshal(s.st)
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}
