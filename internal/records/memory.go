// internal/records/memory.go
//
// In-memory implementation of Store.
// Used in tests and when no database is configured; state is lost on restart.

package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memory is a slice-backed Store guarded by a RWMutex.
type memory struct {
	mu   sync.RWMutex
	rows []Record
	now  func() time.Time
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{now: time.Now}
}

func (m *memory) Insert(ctx context.Context, n NewRecord) (Record, error) {
	if err := n.Validate(); err != nil {
		return Record{}, err
	}
	r := Record{
		ID:          uuid.NewString(),
		Name:        n.Name,
		Attempts:    n.Attempts,
		TimeSeconds: n.TimeSeconds,
		CreatedAt:   m.now().UTC(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *memory) Best(ctx context.Context) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.rows) == 0 {
		return nil, nil
	}
	best := m.rows[0]
	for _, r := range m.rows[1:] {
		if Better(r, best) {
			best = r
		}
	}
	return &best, nil
}

func (m *memory) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	out := append([]Record(nil), m.rows...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
