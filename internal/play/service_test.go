package play

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/records"
	"github.com/robalobadob/numguess/internal/store"
)

// tickClock advances by one second on every call.
func tickClock() func() time.Time {
	t := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestService(recs records.Store, target int) *Service {
	return NewService(store.NewMemoryStore(), recs,
		WithTarget(func() int { return target }),
		WithClock(tickClock()),
	)
}

// failingStore rejects every call.
type failingStore struct {
	records.Store
	inserts int
}

func (f *failingStore) Insert(ctx context.Context, n records.NewRecord) (records.Record, error) {
	f.inserts++
	return records.Record{}, errors.New("store unavailable")
}

func (f *failingStore) Best(ctx context.Context) (*records.Record, error) {
	return nil, errors.New("store unavailable")
}

// blockingStore holds Insert until release is closed.
type blockingStore struct {
	records.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Insert(ctx context.Context, n records.NewRecord) (records.Record, error) {
	close(b.entered)
	<-b.release
	return b.Store.Insert(ctx, n)
}

// panickingStore blows up inside Insert.
type panickingStore struct {
	records.Store
}

func (panickingStore) Insert(ctx context.Context, n records.NewRecord) (records.Record, error) {
	panic("driver crashed")
}

func TestFullGame(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryStore()
	svc := newTestService(recs, 42)

	if _, err := svc.Start(ctx, "s1", "Maria"); err != nil {
		t.Fatalf("start: %v", err)
	}

	var feedback []game.Feedback
	var last *Outcome
	for _, in := range []string{"10", "70", "42"} {
		out, err := svc.Guess(ctx, "s1", in)
		if err != nil {
			t.Fatalf("guess %s: %v", in, err)
		}
		feedback = append(feedback, out.Guess.Feedback)
		last = out
	}

	want := []game.Feedback{game.FeedbackUp, game.FeedbackDown, game.FeedbackCorrect}
	for i := range want {
		if feedback[i] != want[i] {
			t.Fatalf("feedback = %v, want %v", feedback, want)
		}
	}
	if last.Game.Status != game.StatusSuccess || last.Game.Saving {
		t.Errorf("final game = %+v, want SUCCESS and not saving", last.Game)
	}
	if last.Record == nil || last.Record.Attempts != 3 || last.Record.Name != "Maria" {
		t.Fatalf("record = %+v", last.Record)
	}
	// Start at t+1s, CORRECT at t+4s.
	if last.Record.TimeSeconds != 3 {
		t.Errorf("time_seconds = %v, want 3", last.Record.TimeSeconds)
	}

	best := svc.Best()
	if best == nil || best.ID != last.Record.ID {
		t.Errorf("cached best = %+v, want saved record", best)
	}
}

func TestOneInsertPerGame(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryStore()
	svc := newTestService(recs, 7)

	_, _ = svc.Start(ctx, "s1", "Ana")
	if _, err := svc.Guess(ctx, "s1", "7"); err != nil {
		t.Fatalf("guess: %v", err)
	}
	if _, err := svc.Guess(ctx, "s1", "7"); !errors.Is(err, game.ErrNotPlaying) {
		t.Errorf("guess after win err = %v, want ErrNotPlaying", err)
	}
	list, _ := recs.List(ctx, 10)
	if len(list) != 1 {
		t.Errorf("inserted %d records, want 1", len(list))
	}
}

func TestInvalidGuessLeavesState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(records.NewMemoryStore(), 50)
	_, _ = svc.Start(ctx, "s1", "Ana")

	for _, in := range []string{"", "abc", "0", "101"} {
		if _, err := svc.Guess(ctx, "s1", in); !errors.Is(err, game.ErrInvalidGuess) {
			t.Errorf("Guess(%q) err = %v, want ErrInvalidGuess", in, err)
		}
	}
	if g := svc.State(ctx, "s1"); g.Attempts() != 0 || g.Status != game.StatusPlaying {
		t.Errorf("state changed: %+v", g)
	}
}

func TestSaveFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{}
	svc := newTestService(fs, 9)

	_, _ = svc.Start(ctx, "s1", "Ana")
	out, err := svc.Guess(ctx, "s1", "9")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if out.Game.Status != game.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", out.Game.Status)
	}
	if out.Game.Saving {
		t.Errorf("saving flag left set after failed save")
	}
	if out.Record != nil {
		t.Errorf("record = %+v, want nil", out.Record)
	}
	if fs.inserts != 1 {
		t.Errorf("inserts = %d, want 1 (no retry)", fs.inserts)
	}
	if _, err := svc.Reset(ctx, "s1"); err != nil {
		t.Errorf("reset after failed save: %v", err)
	}
}

func TestResetBlockedWhileSaving(t *testing.T) {
	ctx := context.Background()
	bs := &blockingStore{
		Store:   records.NewMemoryStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(bs, 11)
	_, _ = svc.Start(ctx, "s1", "Ana")

	done := make(chan *Outcome)
	go func() {
		out, _ := svc.Guess(ctx, "s1", "11")
		done <- out
	}()
	<-bs.entered

	if g := svc.State(ctx, "s1"); !g.Saving || g.Status != game.StatusSuccess {
		t.Errorf("state during save = %+v, want SUCCESS + saving", g)
	}
	if _, err := svc.Reset(ctx, "s1"); !errors.Is(err, game.ErrSaving) {
		t.Errorf("reset during save err = %v, want ErrSaving", err)
	}

	close(bs.release)
	out := <-done
	if out == nil || out.Record == nil {
		t.Fatalf("outcome = %+v, want saved record", out)
	}
	g, err := svc.Reset(ctx, "s1")
	if err != nil {
		t.Fatalf("reset after save: %v", err)
	}
	if g.Screen() != game.StatusStart || g.PlayerName != "" {
		t.Errorf("after reset = %+v", g)
	}
}

func TestRefreshBestKeepsCacheOnError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(records.NewMemoryStore(), 1)
	_, _ = svc.Start(ctx, "s1", "Ana")
	_, _ = svc.Guess(ctx, "s1", "1")
	cached := svc.Best()
	if cached == nil {
		t.Fatalf("no cached best after win")
	}

	svc.records = &failingStore{}
	got := svc.RefreshBest(ctx)
	if got == nil || got.ID != cached.ID {
		t.Errorf("RefreshBest on error = %+v, want cached %+v", got, cached)
	}
}

func TestBestAcrossSessions(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryStore()
	_, _ = recs.Insert(ctx, records.NewRecord{Name: "slow", Attempts: 5, TimeSeconds: 20})
	_, _ = recs.Insert(ctx, records.NewRecord{Name: "lucky", Attempts: 3, TimeSeconds: 99})
	svc := newTestService(recs, 1)

	best := svc.RefreshBest(ctx)
	if best == nil || best.Name != "lucky" {
		t.Fatalf("best = %+v, want lucky", best)
	}

	// A one-guess win beats attempts=3.
	_, _ = svc.Start(ctx, "s2", "Ace")
	_, _ = svc.Guess(ctx, "s2", "1")
	if best := svc.Best(); best == nil || best.Name != "Ace" {
		t.Errorf("best after win = %+v, want Ace", best)
	}
}

func TestStartErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(records.NewMemoryStore(), 5)

	if _, err := svc.Start(ctx, "s1", "  "); !errors.Is(err, game.ErrEmptyName) {
		t.Errorf("blank name err = %v, want ErrEmptyName", err)
	}
	if g := svc.State(ctx, "s1"); g.Screen() != game.StatusStart {
		t.Errorf("screen = %s after rejected start", g.Screen())
	}
	_, _ = svc.Start(ctx, "s1", "Ana")
	if _, err := svc.Start(ctx, "s1", "Ana"); !errors.Is(err, game.ErrAlreadyStarted) {
		t.Errorf("double start err = %v, want ErrAlreadyStarted", err)
	}
}

func TestSaveOutlivesCancelledRequest(t *testing.T) {
	db, err := records.Open(":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := records.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	recs := records.NewSQLStore(db)
	svc := newTestService(recs, 42)

	if _, err := svc.Start(context.Background(), "s1", "Maria"); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := svc.Guess(ctx, "s1", "42")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if out.Game.Status != game.StatusSuccess || out.Game.Saving {
		t.Errorf("game = %+v, want SUCCESS and not saving", out.Game)
	}
	if out.Record == nil {
		t.Fatal("record not saved for cancelled request")
	}
	rows, err := recs.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != out.Record.ID {
		t.Errorf("stored rows = %+v, want exactly the saved record", rows)
	}
}

func TestSavingClearedWhenInsertPanics(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(panickingStore{records.NewMemoryStore()}, 5)
	_, _ = svc.Start(ctx, "s1", "Ana")

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the insert panic to propagate")
			}
		}()
		_, _ = svc.Guess(ctx, "s1", "5")
	}()

	if g := svc.State(ctx, "s1"); g.Saving {
		t.Errorf("saving flag left set after panic: %+v", g)
	}
	if _, err := svc.Reset(ctx, "s1"); err != nil {
		t.Errorf("reset after panic: %v", err)
	}
}
