// internal/records/record.go
//
// Persisted results of finished games and the store contract.
// The "best" record is the one with the smallest (attempts, time_seconds)
// pair; ties fall back to the earliest created_at.

package records

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by Delete when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Record is a stored game result. Created by the store on insert, never mutated.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Attempts    int       `json:"attempts"`
	TimeSeconds float64   `json:"time_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRecord is the payload sent to Insert.
type NewRecord struct {
	Name        string  `json:"name"`
	Attempts    int     `json:"attempts"`
	TimeSeconds float64 `json:"time_seconds"`
}

// Validate checks the invariants the table also enforces.
func (n NewRecord) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return errors.New("record: name is required")
	}
	if n.Attempts < 1 {
		return errors.New("record: attempts must be positive")
	}
	if n.TimeSeconds < 0 {
		return errors.New("record: time_seconds must not be negative")
	}
	return nil
}

// Better reports whether a ranks ahead of b.
func Better(a, b Record) bool {
	if a.Attempts != b.Attempts {
		return a.Attempts < b.Attempts
	}
	if a.TimeSeconds != b.TimeSeconds {
		return a.TimeSeconds < b.TimeSeconds
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Store is the remote record store used by the game.
// Implementations are backed by SQLite (this package) or memory (tests, dev).
type Store interface {
	// Insert persists one finished game and returns the stored row.
	Insert(ctx context.Context, r NewRecord) (Record, error)

	// Best returns the single best record, or nil when the store is empty.
	Best(ctx context.Context) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error
}
