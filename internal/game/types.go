// internal/game/types.go
//
// Core type definitions for the number guessing game.
// Defines:
//   - Status: which of the three screens a session is on.
//   - Feedback: result of comparing one guess with the target.
//   - Guess: one entry of the guess history.
//   - Game: state for a single player session.

package game

import "time"

// Status drives which screen is rendered for a session.
type Status string

const (
	StatusStart   Status = "START_SCREEN"
	StatusPlaying Status = "PLAYING"
	StatusSuccess Status = "SUCCESS"
)

// Feedback is the evaluation of a guess against the target.
//   - "UP":      the target is higher than the guess.
//   - "DOWN":    the target is lower than the guess.
//   - "CORRECT": the guess equals the target.
type Feedback string

const (
	FeedbackUp      Feedback = "UP"
	FeedbackDown    Feedback = "DOWN"
	FeedbackCorrect Feedback = "CORRECT"
)

// Guess is a single submitted attempt. Entries are never mutated.
type Guess struct {
	Number    int       `json:"number"`
	Feedback  Feedback  `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
}

// Game holds the state of one player session. The zero value is a session
// sitting on the start screen.
type Game struct {
	Status     Status    `json:"status"`
	PlayerName string    `json:"playerName"`
	Target     int       `json:"-"`          // Secret number in [MinTarget, MaxTarget].
	History    []Guess   `json:"history"`    // Most recent first.
	StartedAt  time.Time `json:"startedAt"`  // Set by Start.
	FinishedAt time.Time `json:"finishedAt"` // Set on the CORRECT guess.
	Saving     bool      `json:"saving"`     // True while the result is being persisted.
}
