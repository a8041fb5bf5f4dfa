package mediagroup

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	Caption      string
	FileID       string
}

type Group struct {
	ChatID   int64
	UserID   int64
	Username string
	Captions []string
	FileIDs  []string
}

// Description joins the distinct captions of the album in arrival order.
func (g Group) Description() string {
	seen := make(map[string]struct{}, len(g.Captions))
	parts := make([]string, 0, len(g.Captions))
	for _, c := range g.Captions {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	groups   map[string]*pendingGroup
	closed   bool
}

type pendingGroup struct {
	group Group
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		groups:   make(map[string]*pendingGroup),
	}
}

// Add buffers one album item. The group is flushed once no item for it has
// arrived for the debounce period.
func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{
			group: Group{
				ChatID:   item.ChatID,
				UserID:   item.UserID,
				Username: item.Username,
			},
		}
		a.groups[key] = pg
	}
	pg.group.FileIDs = append(pg.group.FileIDs, item.FileID)
	if item.Caption != "" {
		pg.group.Captions = append(pg.group.Captions, item.Caption)
	}

	if pg.timer != nil {
		pg.timer.Stop()
	}
	pg.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

// Pending returns the number of groups waiting for their debounce.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

// Close stops all timers and drops pending groups. It returns how many were
// dropped. Add is a no-op afterwards.
func (a *Aggregator) Close() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	n := len(a.groups)
	for key, pg := range a.groups {
		if pg.timer != nil {
			pg.timer.Stop()
		}
		delete(a.groups, key)
	}
	return n
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	group := pg.group
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(group)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
