// internal/httpserver/routes_admin.go
//
// Record maintenance behind HTTP basic auth:
//   - GET    /admin/records?limit=N → newest records first (default 20, max 200)
//   - DELETE /admin/records/{id}    → remove one record, then refresh the best record
//
// Mounted only when an admin bcrypt hash is configured.

package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/numguess/internal/records"
)

const maxAdminLimit = 200

// mountAdmin registers /admin routes when a password hash is configured.
func (s *Server) mountAdmin() {
	if s.opts.AdminPasswordHash == "" {
		return
	}
	s.r.Route("/admin", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(s.requireAdmin)
		r.Get("/records", s.handleAdminList)
		r.Delete("/records/{id}", s.handleAdminDelete)
	})
}

// requireAdmin enforces basic auth against the configured user and bcrypt hash.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pw, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.opts.AdminUser)) != 1 ||
			!checkPassword(s.opts.AdminPasswordHash, pw) {
			w.Header().Set("WWW-Authenticate", `Basic realm="numguess admin"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxAdminLimit)
	}
	rows, err := s.records.List(r.Context(), limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list records")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": rows})
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.records.Delete(r.Context(), id); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("record", id).Msg("delete record")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	hlog.FromRequest(r).Info().Str("record", id).Msg("record deleted")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "best": s.play.RefreshBest(r.Context())})
}
