// internal/httpserver/pages.go
//
// Server-rendered screens: one template, three states.
// POST handlers follow post/redirect/get; a rejected action re-renders the
// current screen with the error instead of redirecting.

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/records"
)

type pageView struct {
	Start, Playing, Success bool

	PlayerName string
	Attempts   int
	Seconds    string
	Saving     bool
	History    []historyRow
	Best       *bestView
	Error      string

	Min, Max, MaxNameLen int
}

type historyRow struct {
	Number int
	Label  string
	Class  string
	Latest bool
}

type bestView struct {
	Name     string
	Attempts int
	Seconds  string
	Date     string
}

var feedbackLabels = map[game.Feedback]string{
	game.FeedbackUp:      "UP ▲",
	game.FeedbackDown:    "DOWN ▼",
	game.FeedbackCorrect: "CORRECT ✓",
}

var feedbackClasses = map[game.Feedback]string{
	game.FeedbackUp:      "up",
	game.FeedbackDown:    "down",
	game.FeedbackCorrect: "correct",
}

func formatSeconds(v float64) string { return fmt.Sprintf("%.2f", v) }

func newPageView(g *game.Game, best *records.Record, now time.Time) pageView {
	v := pageView{
		PlayerName: g.PlayerName,
		Attempts:   g.Attempts(),
		Seconds:    formatSeconds(g.ElapsedSeconds(now)),
		Saving:     g.Saving,
		Min:        game.MinTarget,
		Max:        game.MaxTarget,
		MaxNameLen: game.MaxNameLen,
	}
	switch g.Screen() {
	case game.StatusPlaying:
		v.Playing = true
	case game.StatusSuccess:
		v.Success = true
	default:
		v.Start = true
	}
	for i, h := range g.History {
		v.History = append(v.History, historyRow{
			Number: h.Number,
			Label:  feedbackLabels[h.Feedback],
			Class:  feedbackClasses[h.Feedback],
			Latest: i == 0,
		})
	}
	if best != nil {
		v.Best = &bestView{
			Name:     best.Name,
			Attempts: best.Attempts,
			Seconds:  formatSeconds(best.TimeSeconds),
			Date:     best.CreatedAt.Local().Format("2006-01-02"),
		}
	}
	return v
}

// render writes the page for g with an optional error message.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, g *game.Game, msg string) {
	var best *records.Record
	if g.Screen() == game.StatusStart {
		// The start screen always shows a freshly fetched best record.
		best = s.play.RefreshBest(r.Context())
	}
	v := newPageView(g, best, time.Now())
	v.Error = msg

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
	}
}

// rejected re-renders the current screen for a failed action.
func (s *Server) rejected(w http.ResponseWriter, r *http.Request, g *game.Game, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("page action failed")
		s.render(w, r, status, g, "Something went wrong, please try again.")
		return
	}
	s.render(w, r, status, g, err.Error())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	g := s.play.State(r.Context(), sessionFrom(r).ID)
	s.render(w, r, http.StatusOK, g, "")
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sid := sessionFrom(r).ID
	name := r.PostFormValue("name")
	g, err := s.play.Start(r.Context(), sid, name)
	if err != nil {
		if g.Screen() == game.StatusStart {
			g.PlayerName = name // keep what the player typed
		}
		s.rejected(w, r, g, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sid := sessionFrom(r).ID
	if _, err := s.play.Guess(r.Context(), sid, r.PostFormValue("guess")); err != nil {
		s.rejected(w, r, s.play.State(r.Context(), sid), err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sid := sessionFrom(r).ID
	g, err := s.play.Reset(r.Context(), sid)
	if err != nil {
		s.rejected(w, r, g, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// statusFor maps game errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrEmptyName),
		errors.Is(err, game.ErrNameTooLong),
		errors.Is(err, game.ErrInvalidGuess):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrAlreadyStarted),
		errors.Is(err, game.ErrNotPlaying),
		errors.Is(err, game.ErrSaving):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
