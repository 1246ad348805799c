// internal/httpserver/routes_api.go
//
// JSON API for clients that render the screens themselves.
// Exposes, under /api:
//   - GET  /api                → service descriptor
//   - GET  /api/state          → current session state + cached best record
//   - POST /api/game/start     → {name}; begin a game
//   - POST /api/game/guess     → {guess}; submit a guess (number or numeric string)
//   - POST /api/game/reset     → back to the start screen
//   - GET  /api/records/best   → best record, fetched fresh
//
// Sessions work the same as for pages; the start response also returns the
// session token for clients that prefer "Authorization: Bearer".

package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/records"
)

// mountAPI registers all /api routes.
func (s *Server) mountAPI() {
	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(s.cors)
		r.Use(s.withSession)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service": "numguess",
				"endpoints": []string{
					"GET /api/state", "POST /api/game/start", "POST /api/game/guess",
					"POST /api/game/reset", "GET /api/records/best", "/health",
				},
			})
		})
		r.Get("/state", s.handleAPIState)
		r.Post("/game/start", s.handleAPIStart)
		r.Post("/game/guess", s.handleAPIGuess)
		r.Post("/game/reset", s.handleAPIReset)
		r.Get("/records/best", s.handleAPIBest)
	})
}

// stateRes is returned by every /api/game endpoint and /api/state.
type stateRes struct {
	Game           *game.Game      `json:"game"`
	Attempts       int             `json:"attempts"`
	ElapsedSeconds float64         `json:"elapsedSeconds"`
	Best           *records.Record `json:"best"`
	Token          string          `json:"token,omitempty"`
}

func (s *Server) stateOf(g *game.Game) stateRes {
	if g.Status == "" {
		g.Status = game.StatusStart
	}
	return stateRes{
		Game:           g,
		Attempts:       g.Attempts(),
		ElapsedSeconds: g.ElapsedSeconds(time.Now()),
		Best:           s.play.Best(),
	}
}

// apiError writes a game error as JSON with the mapped status.
func apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("api action failed")
		writeError(w, status, "internal_error")
		return
	}
	writeError(w, status, err.Error())
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	g := s.play.State(r.Context(), sessionFrom(r).ID)
	writeJSON(w, http.StatusOK, s.stateOf(g))
}

type startReq struct {
	Name string `json:"name"`
}

func (s *Server) handleAPIStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := sessionFrom(r)
	g, err := s.play.Start(r.Context(), sess.ID, req.Name)
	if err != nil {
		apiError(w, r, err)
		return
	}
	res := s.stateOf(g)
	res.Token = sess.Token
	writeJSON(w, http.StatusOK, res)
}

// guessReq accepts the guess as a JSON number or a string, like a form field.
type guessReq struct {
	Guess any `json:"guess"`
}

type guessRes struct {
	stateRes
	Feedback game.Feedback   `json:"feedback"`
	Record   *records.Record `json:"record,omitempty"`
}

func (s *Server) handleAPIGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	input := ""
	if req.Guess != nil {
		input = fmt.Sprint(req.Guess)
	}
	out, err := s.play.Guess(r.Context(), sessionFrom(r).ID, input)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{
		stateRes: s.stateOf(out.Game),
		Feedback: out.Guess.Feedback,
		Record:   out.Record,
	})
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	g, err := s.play.Reset(r.Context(), sessionFrom(r).ID)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateOf(g))
}

func (s *Server) handleAPIBest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"best": s.play.RefreshBest(r.Context())})
}
