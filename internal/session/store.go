package session

import (
	"sync"
	"time"

	"suno-forge/internal/forge"
)

// Kind names the operation that produced a history entry.
type Kind string

const (
	KindGenerate Kind = "generate"
	KindBatch    Kind = "batch"
	KindMutate   Kind = "mutate"
	KindVision   Kind = "vision"
	KindPack     Kind = "pack"
	KindStudio   Kind = "studio"
)

type HistoryEntry struct {
	Kind   Kind
	Prompt forge.Prompt
	At     time.Time
}

type Session struct {
	UserID       int64
	Username     string
	History      []HistoryEntry
	LastActivity time.Time
}

type Options struct {
	MaxEntries int
}

type Store struct {
	mu         sync.Mutex
	sessions   map[int64]*Session
	maxHistory int
}

func NewStore(opts Options) *Store {
	maxHistory := opts.MaxEntries
	if maxHistory <= 0 {
		maxHistory = 20
	}

	return &Store{
		sessions:   make(map[int64]*Session),
		maxHistory: maxHistory,
	}
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.History = nil
		sess.LastActivity = time.Now()
	}
}

// Snapshot returns a copy of the user's history, oldest first.
func (s *Store) Snapshot(userID int64, username string) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = time.Now()

	history := make([]HistoryEntry, len(sess.History))
	copy(history, sess.History)
	return history
}

// Last returns the most recent entry, if any.
func (s *Store) Last(userID int64) (HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || len(sess.History) == 0 {
		return HistoryEntry{}, false
	}
	return sess.History[len(sess.History)-1], true
}

// Append records entries, keeping only the newest maxHistory. Entries with a
// zero At are stamped with the current time.
func (s *Store) Append(userID int64, username string, entries ...HistoryEntry) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = time.Now()

	for _, e := range entries {
		if e.At.IsZero() {
			e.At = sess.LastActivity
		}
		sess.History = append(sess.History, e)
	}
	if len(sess.History) > s.maxHistory {
		sess.History = append([]HistoryEntry(nil), sess.History[len(sess.History)-s.maxHistory:]...)
	}
}

func (s *Store) getOrCreateLocked(userID int64, username string) *Session {
	if sess, ok := s.sessions[userID]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		UserID:       userID,
		Username:     username,
		History:      nil,
		LastActivity: time.Now(),
	}
	s.sessions[userID] = sess
	return sess
}
