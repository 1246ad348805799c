package records

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewSQLStore(db)
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) {
		s := openTestDB(t)
		s.now = stepClock()
		fn(t, s)
	})
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore().(*memory)
		s.now = stepClock()
		fn(t, s)
	})
}

func mustInsert(t *testing.T, s Store, n NewRecord) Record {
	t.Helper()
	r, err := s.Insert(context.Background(), n)
	if err != nil {
		t.Fatalf("insert %+v: %v", n, err)
	}
	return r
}

func TestBestEmpty(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		best, err := s.Best(context.Background())
		if err != nil {
			t.Fatalf("best: %v", err)
		}
		if best != nil {
			t.Errorf("best = %+v, want nil", best)
		}
	})
}

func TestBestPrefersFewerAttempts(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		mustInsert(t, s, NewRecord{Name: "slow", Attempts: 5, TimeSeconds: 20})
		want := mustInsert(t, s, NewRecord{Name: "lucky", Attempts: 3, TimeSeconds: 99})

		best, err := s.Best(context.Background())
		if err != nil {
			t.Fatalf("best: %v", err)
		}
		if best == nil || best.ID != want.ID {
			t.Fatalf("best = %+v, want %+v", best, want)
		}
		if best.Attempts != 3 || best.TimeSeconds != 99 || best.Name != "lucky" {
			t.Errorf("best fields = %+v", best)
		}
	})
}

func TestBestTieBreaks(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		mustInsert(t, s, NewRecord{Name: "a", Attempts: 4, TimeSeconds: 12.5})
		faster := mustInsert(t, s, NewRecord{Name: "b", Attempts: 4, TimeSeconds: 7.25})
		mustInsert(t, s, NewRecord{Name: "c", Attempts: 4, TimeSeconds: 7.25})

		best, err := s.Best(context.Background())
		if err != nil {
			t.Fatalf("best: %v", err)
		}
		if best.ID != faster.ID {
			t.Errorf("best = %s (%s), want earliest of equal pair %s", best.ID, best.Name, faster.ID)
		}
	})
}

func TestInsertAssignsIdentity(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		a := mustInsert(t, s, NewRecord{Name: "x", Attempts: 1, TimeSeconds: 0})
		b := mustInsert(t, s, NewRecord{Name: "x", Attempts: 1, TimeSeconds: 0})
		if a.ID == "" || a.ID == b.ID {
			t.Errorf("ids not unique: %q %q", a.ID, b.ID)
		}
		if a.CreatedAt.IsZero() {
			t.Errorf("created_at not set")
		}
	})
}

func TestInsertValidation(t *testing.T) {
	bad := []NewRecord{
		{Name: "", Attempts: 1, TimeSeconds: 1},
		{Name: "x", Attempts: 0, TimeSeconds: 1},
		{Name: "x", Attempts: 2, TimeSeconds: -1},
	}
	stores(t, func(t *testing.T, s Store) {
		for _, n := range bad {
			if _, err := s.Insert(context.Background(), n); err == nil {
				t.Errorf("Insert(%+v) succeeded, want error", n)
			}
		}
		if best, _ := s.Best(context.Background()); best != nil {
			t.Errorf("invalid inserts were stored: %+v", best)
		}
	})
}

func TestListAndDelete(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first := mustInsert(t, s, NewRecord{Name: "first", Attempts: 2, TimeSeconds: 3})
		second := mustInsert(t, s, NewRecord{Name: "second", Attempts: 6, TimeSeconds: 30})

		list, err := s.List(ctx, 10)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
			t.Fatalf("list = %+v, want newest first", list)
		}
		if !list[1].CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("created_at round trip = %v, want %v", list[1].CreatedAt, first.CreatedAt)
		}

		if err := s.Delete(ctx, first.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.Delete(ctx, first.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
		best, _ := s.Best(ctx)
		if best == nil || best.ID != second.ID {
			t.Errorf("best after delete = %+v, want %s", best, second.ID)
		}
	})
}

func TestMigrateIdempotent(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}

	var name string
	if err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='game_records'",
	).Scan(&name); err != nil {
		t.Errorf("table game_records not found: %v", err)
	}
}

func TestScanRejectsMalformedCreatedAt(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_records (id, name, attempts, time_seconds, created_at)
        VALUES ('r1', 'Ana', 2, 1.5, 'yesterday')`)
	if err != nil {
		t.Fatalf("seeding row: %v", err)
	}

	if _, err := s.Best(ctx); err == nil {
		t.Error("best: expected error for malformed created_at")
	}
	if _, err := s.List(ctx, 10); err == nil {
		t.Error("list: expected error for malformed created_at")
	}
}
