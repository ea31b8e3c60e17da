package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"financas/internal/auth"
)

const sessionCookie = "financas_session"

type contextKey string

const sessionContextKey contextKey = "session"

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentSession resolves the session cookie against the session store.
func (s *Server) currentSession(r *http.Request) *auth.Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := s.deps.Sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

// requireAuth redirects anonymous requests to the login page.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		if sess == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// sessionFrom returns the authenticated session stored by requireAuth.
func sessionFrom(ctx context.Context) *auth.Session {
	sess, ok := ctx.Value(sessionContextKey).(*auth.Session)
	if !ok {
		slog.ErrorContext(ctx, "Session missing from authenticated request context")
		return &auth.Session{}
	}
	return sess
}
