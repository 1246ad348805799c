// internal/play/service.go
//
// Game state container for a browser session.
// Responsibilities:
//   - Route player actions (start, guess, reset) to the session's game.Game.
//   - Persist a finished game exactly once and refresh the best record.
//   - Hold the last fetched best record in memory until the next fetch.
//
// Store failures are logged and swallowed: a correct guess always lands the
// player on the success screen, saved or not.

package play

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/records"
	"github.com/robalobadob/numguess/internal/store"
)

// Service wires the session store and the record store together.
type Service struct {
	sessions store.Store
	records  records.Store
	target   func() int
	now      func() time.Time

	mu   sync.RWMutex // guards best
	best *records.Record
}

// Option customizes a Service.
type Option func(*Service)

// WithTarget replaces the random target generator (tests, fixed puzzles).
func WithTarget(fn func() int) Option { return func(s *Service) { s.target = fn } }

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option { return func(s *Service) { s.now = fn } }

// NewService constructs a Service.
func NewService(sessions store.Store, recs records.Store, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		records:  recs,
		target:   game.RandomTarget,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Outcome is the result of one guess.
type Outcome struct {
	Guess  game.Guess      `json:"guess"`
	Game   *game.Game      `json:"game"`
	Record *records.Record `json:"record,omitempty"` // Set when the finished game was saved.
}

// State returns the session's game; unknown sessions are on the start screen.
func (s *Service) State(ctx context.Context, sid string) *game.Game {
	g, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return &game.Game{Status: game.StatusStart}
	}
	return g
}

// Start validates the name and begins a game with a new target.
func (s *Service) Start(ctx context.Context, sid, name string) (*game.Game, error) {
	return s.sessions.Update(ctx, sid, func(g *game.Game) error {
		return g.Start(name, s.target(), s.now())
	})
}

// Guess parses raw input and applies it. A CORRECT guess is persisted before
// returning, with the session flagged as saving for the duration of the insert.
func (s *Service) Guess(ctx context.Context, sid, input string) (*Outcome, error) {
	n, err := game.ParseGuess(input)
	if err != nil {
		return nil, err
	}

	var gs game.Guess
	g, err := s.sessions.Update(ctx, sid, func(g *game.Game) error {
		var err error
		gs, err = g.ApplyGuess(n, s.now())
		if err == nil && gs.Feedback == game.FeedbackCorrect {
			g.Saving = true
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &Outcome{Guess: gs, Game: g}
	if gs.Feedback != game.FeedbackCorrect {
		return out, nil
	}

	// The save runs to completion even if the caller goes away.
	saveCtx := context.WithoutCancel(ctx)
	defer func() {
		out.Game, _ = s.sessions.Update(saveCtx, sid, func(g *game.Game) error {
			g.Saving = false
			return nil
		})
	}()
	out.Record = s.save(saveCtx, g)
	return out, nil
}

// save inserts the finished game and refreshes the best record. No retry.
func (s *Service) save(ctx context.Context, g *game.Game) *records.Record {
	rec, err := s.records.Insert(ctx, records.NewRecord{
		Name:        g.PlayerName,
		Attempts:    g.Attempts(),
		TimeSeconds: g.ElapsedSeconds(s.now()),
	})
	if err != nil {
		log.Error().Err(err).
			Str("player", g.PlayerName).
			Int("attempts", g.Attempts()).
			Msg("save failed")
		return nil
	}
	log.Info().Str("record", rec.ID).Str("player", rec.Name).
		Int("attempts", rec.Attempts).Float64("time_seconds", rec.TimeSeconds).
		Msg("record saved")
	s.RefreshBest(ctx)
	return &rec
}

// Reset returns the session to the start screen. Refused while saving.
func (s *Service) Reset(ctx context.Context, sid string) (*game.Game, error) {
	return s.sessions.Update(ctx, sid, func(g *game.Game) error {
		return g.Reset()
	})
}

// RefreshBest queries the store for the best record and caches it, nil
// included. On failure the previous value is kept and returned.
func (s *Service) RefreshBest(ctx context.Context) *records.Record {
	best, err := s.records.Best(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch best record")
		return s.Best()
	}
	s.mu.Lock()
	s.best = best
	s.mu.Unlock()
	return s.Best()
}

// Best returns the cached best record without querying the store.
func (s *Service) Best() *records.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.best == nil {
		return nil
	}
	b := *s.best
	return &b
}

// Sweep drops sessions idle for longer than idle.
func (s *Service) Sweep(ctx context.Context, idle time.Duration) int {
	return s.sessions.Sweep(ctx, s.now().Add(-idle))
}
