// internal/httpserver/session.go
//
// Browser session identity.
// A session is a random ID carried in an HS256 JWT, read from the
// "Authorization: Bearer" header or the session cookie. Requests without a
// valid token get a fresh session and a Set-Cookie.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
)

const sessionCookieName = "numguess_session"

// ctxSessionKey is the context key type for storing session.
type ctxSessionKey struct{}

type session struct {
	ID    string
	Token string
}

// withSession attaches the caller's session to the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.parseSession(bearerOrCookie(r))
		if !ok {
			id := genID()
			tok, exp, err := s.signSession(id)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("sign session")
				writeError(w, http.StatusInternalServerError, "session_failed")
				return
			}
			s.setSessionCookie(w, tok, exp)
			sess = session{ID: id, Token: tok}
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session installed by withSession.
func sessionFrom(r *http.Request) session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(session)
	return sess
}

// parseSession validates a token and extracts the session ID.
func (s *Server) parseSession(tok string) (session, bool) {
	if tok == "" {
		return session{}, false
	}
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid || claims.Subject == "" {
		return session{}, false
	}
	return session{ID: claims.Subject, Token: tok}, true
}

// signSession creates an HS256 JWT for a session ID, valid for SessionTTL.
func (s *Server) signSession(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.SessionSecret))
	return ss, exp, err
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.CookieSecure {
		sameSite = http.SameSiteNoneMode // required for a cross-site API client
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
