// Package prefs is the session/preference store: a small durable key-value
// file holding the active user id and the UI language. It is independent of
// the entity store. Reads are live subscriptions; writes apply to memory
// synchronously and reach disk through a single flush goroutine, so the
// caller never waits on the file system and per-key write order is the call
// order.
package prefs

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tasknest/internal/live"
)

// DefaultLanguage is what unrecognized or unset language codes fall back to.
const DefaultLanguage = "zh"

const (
	keyUserID   = "user_id"
	keyLanguage = "language"
)

type fileData struct {
	UserID   *int64 `json:"user_id,omitempty"`
	Language string `json:"language,omitempty"`
}

type Store struct {
	path string
	log  *slog.Logger

	mu   sync.Mutex
	data fileData

	writes chan fileData
	done   chan struct{}

	userHub *live.Hub[string, *int64]
	langHub *live.Hub[string, string]
}

// Open loads the preference file at path, creating state from defaults when
// the file does not exist yet, and starts the flush goroutine.
func Open(path string, log *slog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		log:    log,
		writes: make(chan fileData, 16),
		done:   make(chan struct{}),
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// first run
	default:
		return nil, err
	}

	s.userHub = live.NewHub(func(string) (*int64, error) {
		return s.snapshotUserID(), nil
	})
	s.langHub = live.NewHub(func(string) (string, error) {
		return s.Language(), nil
	})

	go s.flushLoop()
	return s, nil
}

// UserID returns the active user id, nil when nobody is logged in.
func (s *Store) UserID() *int64 {
	return s.snapshotUserID()
}

// Language returns the stored language code, falling back to
// DefaultLanguage for anything unrecognized.
func (s *Store) Language() string {
	s.mu.Lock()
	code := s.data.Language
	s.mu.Unlock()

	switch code {
	case "en", "zh":
		return code
	}
	return DefaultLanguage
}

// WatchUserID delivers the current user id immediately and again after
// every SaveUserID/ClearUserID.
func (s *Store) WatchUserID() (*live.Sub[*int64], error) {
	return s.userHub.Subscribe(keyUserID, nil)
}

// WatchLanguage delivers the current language immediately and again after
// every SaveLanguage.
func (s *Store) WatchLanguage() (*live.Sub[string], error) {
	return s.langHub.Subscribe(keyLanguage, nil)
}

func (s *Store) SaveUserID(userID int64) {
	s.mutate(func(d *fileData) { d.UserID = &userID })
	s.invalidateUser()
}

func (s *Store) ClearUserID() {
	s.mutate(func(d *fileData) { d.UserID = nil })
	s.invalidateUser()
}

func (s *Store) SaveLanguage(code string) {
	s.mutate(func(d *fileData) { d.Language = code })
	if err := s.langHub.Invalidate(keyLanguage); err != nil {
		s.log.Error("republish language", "err", err)
	}
}

// Close flushes pending writes and stops the flush goroutine. No Save call
// may run concurrently with or after Close.
func (s *Store) Close() {
	close(s.writes)
	<-s.done
}

func (s *Store) mutate(apply func(*fileData)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.data)

	// Enqueue while still holding the lock: two writers that apply in one
	// order must reach the flush goroutine in the same order, or the file
	// ends up persisting the older state last. flushLoop never takes s.mu,
	// so the send cannot deadlock.
	s.writes <- s.data
}

func (s *Store) invalidateUser() {
	if err := s.userHub.Invalidate(keyUserID); err != nil {
		s.log.Error("republish user id", "err", err)
	}
}

func (s *Store) snapshotUserID() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.UserID == nil {
		return nil
	}
	value := *s.data.UserID
	return &value
}

func (s *Store) flushLoop() {
	defer close(s.done)
	for snapshot := range s.writes {
		if err := s.flush(snapshot); err != nil {
			s.log.Error("write preference file", "path", s.path, "err", err)
		}
	}
}

func (s *Store) flush(snapshot fileData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
