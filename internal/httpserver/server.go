// internal/httpserver/server.go
//
// HTTP server wiring for the number guessing game.
// Responsibilities:
//   - Router + middleware (access logs, timeouts, panic recovery, request IDs).
//   - Browser pages: "/" renders the session's screen; POST /start, /guess, /reset.
//   - JSON API under /api (same operations, CORS enabled for a separate client).
//   - Ops endpoints: /health and, when configured, /admin/records.
//
// Notes:
//   - Every request carries a session (signed cookie or bearer token); a new one
//     is issued when missing or invalid.
//   - Validation errors re-render the page with a message; they never change state.

package httpserver

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/assets"
	"github.com/robalobadob/numguess/internal/play"
	"github.com/robalobadob/numguess/internal/records"
)

// Options carries the settings the server needs from config.
type Options struct {
	SessionSecret     string
	SessionTTL        time.Duration
	CookieSecure      bool
	ClientOrigin      string
	RequestTimeout    time.Duration
	AdminUser         string
	AdminPasswordHash string

	// Health, if set, is called by /health (typically a database ping).
	Health func(ctx context.Context) error
}

// Server bundles router, game service, record store and page templates.
type Server struct {
	r       *chi.Mux
	play    *play.Service
	records records.Store
	opts    Options
	tmpl    *template.Template
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *play.Service, recs records.Store, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{
		r:       chi.NewRouter(),
		play:    svc,
		records: recs,
		opts:    opts,
		tmpl:    template.Must(assets.Templates(nil)),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))        // request-scoped logger
	s.r.Use(hlog.AccessHandler(accessLog))      // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time

	// --- diagnostics ---
	s.r.Get("/health", s.handleHealth)
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets.Static()))))

	// Pages
	s.r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.handleIndex)
		r.Post("/start", s.handleStart)
		r.Post("/guess", s.handleGuess)
		r.Post("/reset", s.handleReset)
	})

	s.mountAPI()
	s.mountAdmin()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// HTTPServer returns an *http.Server bound to addr serving this router.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", d).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("http request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ health -------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "error"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
