package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore keeps records in the game_records table.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore wraps a migrated database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Insert(ctx context.Context, n NewRecord) (Record, error) {
	if err := n.Validate(); err != nil {
		return Record{}, err
	}
	r := Record{
		ID:          uuid.NewString(),
		Name:        n.Name,
		Attempts:    n.Attempts,
		TimeSeconds: n.TimeSeconds,
		CreatedAt:   s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_records (id, name, attempts, time_seconds, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Attempts, r.TimeSeconds, r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	return r, nil
}

// Best orders by attempts, then time_seconds, then created_at, all ascending.
func (s *SQLStore) Best(ctx context.Context) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, attempts, time_seconds, created_at
        FROM game_records
        ORDER BY attempts ASC, time_seconds ASC, created_at ASC
        LIMIT 1`)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query best record: %w", err)
	}
	return &r, nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, attempts, time_seconds, created_at
        FROM game_records
        ORDER BY created_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_records WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var created string
	if err := sc.Scan(&r.ID, &r.Name, &r.Attempts, &r.TimeSeconds, &created); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return r, nil
}
