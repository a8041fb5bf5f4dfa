package studio

import (
	"strings"
	"sync"
	"time"

	"suno-forge/internal/forge"
)

const (
	MenuMain   = "main"
	MenuGenre  = "genre"
	MenuMood   = "mood"
	MenuEnergy = "energy"
	MenuMutate = "mutate"
)

const defaultGenre = "pop"

var moods = []string{
	"Euphoric",
	"Uplifting",
	"Melancholic",
	"Dark",
	"Dreamy",
	"Chill",
	"Romantic",
	"Aggressive",
	"Epic",
	"Nostalgic",
}

// Moods lists the moods offered by the studio menus.
func Moods() []string {
	return append([]string(nil), moods...)
}

// UIState is one user's studio selection in one chat.
type UIState struct {
	Genre        string
	Mood         string
	Energy       forge.EnergyLabel
	Instrumental bool
	Theme        string

	MessageID     int
	AwaitingTheme bool
	Menu          string // "main" | "genre" | "mood" | "energy" | "mutate"

	UpdatedAt time.Time
}

// Config turns the selection into input for the prompt assembler.
func (s UIState) Config() forge.PromptConfig {
	cfg := forge.PromptConfig{
		Genre: s.Genre,
		Mood:  s.Mood,
		Theme: strings.TrimSpace(s.Theme),
	}
	if v, ok := s.Energy.Level(); ok {
		cfg.Energy = forge.Float(v)
	}
	if s.Instrumental {
		cfg.Instrumental = forge.Bool(true)
	}
	return cfg
}

// SetGenre selects a known genre. Unknown names are ignored.
func (s *UIState) SetGenre(name string) bool {
	if !forge.IsKnownGenre(name) {
		return false
	}
	s.Genre = strings.ToLower(strings.TrimSpace(name))
	return true
}

// SetMood selects one of Moods by index. "none" clears the mood.
func (s *UIState) SetMood(idx int) bool {
	if idx < 0 {
		s.Mood = ""
		return true
	}
	if idx >= len(moods) {
		return false
	}
	s.Mood = moods[idx]
	return true
}

func (s *UIState) SetEnergy(label forge.EnergyLabel) bool {
	if _, ok := label.Level(); !ok {
		return false
	}
	s.Energy = label
	return true
}

type Store struct {
	mu sync.Mutex
	m  map[stateKey]*UIState
}

type stateKey struct {
	ChatID int64
	UserID int64
}

func NewStore() *Store {
	return &Store{m: make(map[stateKey]*UIState)}
}

func (s *Store) Get(chatID, userID int64) UIState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(chatID, userID)
}

func (s *Store) Update(chatID, userID int64, fn func(*UIState)) UIState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(st)
	}
	if st.Menu == "" {
		st.Menu = MenuMain
	}
	st.UpdatedAt = time.Now()
	return *st
}

// Reset restores the defaults but keeps the keyboard message id.
func (s *Store) Reset(chatID, userID int64) UIState {
	return s.Update(chatID, userID, func(st *UIState) {
		msgID := st.MessageID
		*st = defaultState()
		st.MessageID = msgID
	})
}

// AwaitingTheme reports whether the next plain text in the chat is a theme.
func (s *Store) AwaitingTheme(chatID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.m[stateKey{ChatID: chatID, UserID: userID}]
	return ok && st.AwaitingTheme
}

func (s *Store) getOrCreateLocked(chatID, userID int64) *UIState {
	key := stateKey{ChatID: chatID, UserID: userID}
	if st, ok := s.m[key]; ok {
		return st
	}
	st := defaultState()
	s.m[key] = &st
	return s.m[key]
}

func defaultState() UIState {
	return UIState{
		Genre:     defaultGenre,
		Energy:    forge.EnergyMedium,
		Menu:      MenuMain,
		UpdatedAt: time.Now(),
	}
}
