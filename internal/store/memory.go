// internal/store/memory.go
//
// In-memory session store.
// Each browser session owns one *game.Game keyed by session ID.
//
// Characteristics:
//   - Concurrency-safe via RWMutex; mutations go through Update so a session
//     is never changed by two requests at once.
//   - Callers only ever see clones, never the stored pointer.
//   - State is lost when the process restarts; idle sessions are dropped by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/numguess/internal/game"
)

var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Get returns a copy of the session's game.
	// Returns ErrNotFound if the session has never been updated.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on the session's game under the store lock, creating a
	// fresh start-screen game if missing. The returned copy reflects fn's
	// changes even when fn returns an error.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error)

	// Sweep drops sessions not touched since before and reports how many.
	Sweep(ctx context.Context, before time.Time) int
}

type entry struct {
	g        *game.Game
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions
	sessions map[string]*entry // keyed by session ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e.g.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		e = &entry{g: &game.Game{Status: game.StatusStart}}
		m.sessions[id] = e
	}
	e.lastSeen = m.now()
	err := fn(e.g)
	return e.g.Clone(), err
}

func (m *memory) Sweep(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		// A session whose result is being saved is kept until the save ends.
		if e.lastSeen.Before(before) && !e.g.Saving {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
