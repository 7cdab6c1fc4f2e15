// internal/httpserver/auth.go
//
// Session tokens.
//   - POST /sessions issues an HS256 JWT whose "sid" claim is the session ID.
//   - requireSession accepts the token from the Authorization header or the
//     session cookie and only lets it through for its own {id}.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "wordle_session"

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// sign creates a token bound to session sid.
func (t tokenIssuer) sign(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// parse validates a token and returns its session ID.
func (t tokenIssuer) parse(s string) (string, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(s, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", fmt.Errorf("%w: token has no session", ErrUnauthorized)
	}
	return sid, nil
}

// setSessionCookie writes the token cookie alongside the JSON response so
// browser clients need not manage the header themselves.
func setSessionCookie(w http.ResponseWriter, token string, exp time.Time, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/sessions",
		HttpOnly: true,
		Secure:   secure,
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

type ctxSessionKey struct{}

// requireSession enforces a valid token whose sid matches the {id} URL param.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerOrCookie(r)
		if raw == "" {
			writeError(w, r, fmt.Errorf("%w: missing token", ErrUnauthorized))
			return
		}
		sid, err := s.tokens.parse(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if sid != chi.URLParam(r, "id") {
			writeError(w, r, fmt.Errorf("%w: token is for another session", ErrUnauthorized))
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(ctxSessionKey{}).(string)
	return sid
}
