// internal/game/engine.go
//
// Rules for a single number guessing session.
// Responsibilities:
//   - Pick a uniformly random target in [1, 100].
//   - Validate player names and raw guess input.
//   - Evaluate guesses (UP / DOWN / CORRECT) and keep the history, newest first.
//   - Track screen transitions: START_SCREEN → PLAYING → SUCCESS → START_SCREEN.
//
// Notes:
//   - Every method takes the current time explicitly so callers control the clock.
//   - Invalid input never mutates the game.
package game

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinTarget  = 1
	MaxTarget  = 100
	MaxNameLen = 24
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrNameTooLong    = errors.New("name must be at most 24 characters")
	ErrInvalidGuess   = errors.New("guess must be a number between 1 and 100")
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotPlaying     = errors.New("no game in progress")
	ErrSaving         = errors.New("result is still being saved")
)

// RandomTarget returns a uniformly random integer in [MinTarget, MaxTarget].
func RandomTarget() int {
	return rand.IntN(MaxTarget-MinTarget+1) + MinTarget
}

// Evaluate compares a guess with the target.
func Evaluate(guess, target int) Feedback {
	switch {
	case guess < target:
		return FeedbackUp
	case guess > target:
		return FeedbackDown
	default:
		return FeedbackCorrect
	}
}

// NormalizeName trims surrounding whitespace and enforces the length rule.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ParseGuess converts raw form input into a guess number.
// Non-numeric input and values outside [MinTarget, MaxTarget] yield ErrInvalidGuess.
func ParseGuess(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || !inRange(n) {
		return 0, ErrInvalidGuess
	}
	return n, nil
}

func inRange(n int) bool { return n >= MinTarget && n <= MaxTarget }

// Start moves a session from the start screen into play.
// History is cleared and the given target is installed.
func (g *Game) Start(name string, target int, now time.Time) error {
	if g.Status == StatusPlaying || g.Status == StatusSuccess {
		return ErrAlreadyStarted
	}
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if !inRange(target) {
		return errors.New("target out of range")
	}
	g.Status = StatusPlaying
	g.PlayerName = n
	g.Target = target
	g.History = []Guess{}
	g.StartedAt = now
	g.FinishedAt = time.Time{}
	g.Saving = false
	return nil
}

// ApplyGuess evaluates n against the target and prepends it to the history.
// A CORRECT guess finishes the game.
func (g *Game) ApplyGuess(n int, now time.Time) (Guess, error) {
	if g.Status != StatusPlaying {
		return Guess{}, ErrNotPlaying
	}
	if !inRange(n) {
		return Guess{}, ErrInvalidGuess
	}
	gs := Guess{Number: n, Feedback: Evaluate(n, g.Target), Timestamp: now}
	g.History = append([]Guess{gs}, g.History...)
	if gs.Feedback == FeedbackCorrect {
		g.Status = StatusSuccess
		g.FinishedAt = now
	}
	return gs, nil
}

// Reset returns to the start screen and forgets the player.
// It is refused while the result of the finished game is being saved.
func (g *Game) Reset() error {
	if g.Saving {
		return ErrSaving
	}
	*g = Game{Status: StatusStart}
	return nil
}

// Screen reports the current screen; the zero value maps to the start screen.
func (g *Game) Screen() Status {
	if g.Status == "" {
		return StatusStart
	}
	return g.Status
}

// Attempts is the number of guesses submitted so far.
func (g *Game) Attempts() int { return len(g.History) }

// Elapsed is the play time of a finished game, or the running time at now.
func (g *Game) Elapsed(now time.Time) time.Duration {
	if g.StartedAt.IsZero() {
		return 0
	}
	if !g.FinishedAt.IsZero() {
		return g.FinishedAt.Sub(g.StartedAt)
	}
	return now.Sub(g.StartedAt)
}

// ElapsedSeconds is Elapsed rounded to two decimals, the precision records are stored with.
func (g *Game) ElapsedSeconds(now time.Time) float64 {
	return RoundSeconds(g.Elapsed(now))
}

// RoundSeconds converts d to seconds rounded to two decimals.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// Clone returns a deep copy safe to hand outside the session lock.
func (g *Game) Clone() *Game {
	c := *g
	if g.History != nil {
		c.History = append([]Guess(nil), g.History...)
	}
	return &c
}
