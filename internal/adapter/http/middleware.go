package adapthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"timetrack/internal/app"
	"timetrack/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

// authMiddleware is the single authentication chokepoint. It resolves
// the session cookie through ValidateSession on every request; it
// never merely checks that a cookie exists. The gate does not reject
// requests itself: on any validation failure the client's cookie is
// cleared and the request continues anonymously, leaving the 401
// decision to each handler.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := s.auth.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, app.ErrSessionNotFound) && !errors.Is(err, app.ErrSessionExpired) {
				// Ambiguous failures revoke the token too: fail closed.
				slog.ErrorContext(r.Context(), "session validation failed", "error", err)
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFrom returns the authenticated identity attached by the
// gate, or nil for anonymous requests.
func identityFrom(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityContextKey).(*domain.Identity)
	return identity
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
