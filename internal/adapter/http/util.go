package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"

	"timetrack/internal/app"
)

const (
	sessionCookie    = "session_id"
	sessionCookieTTL = 7 * 24 * 60 * 60 // seconds
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// writeServiceError maps application errors onto status codes. Unknown
// errors are logged with detail and surfaced as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, app.ErrEmailTaken):
		writeError(w, http.StatusConflict, "a user with that email already exists")
	case errors.Is(err, app.ErrTimerRunning):
		writeError(w, http.StatusConflict, "a timer is already running")
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// requireIdentity rejects anonymous requests with 401 and otherwise
// returns the attached identity.
func requireIdentity(w http.ResponseWriter, r *http.Request) (int64, bool) {
	identity := identityFrom(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return identity.ID, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.secureCookies,
		MaxAge:   sessionCookieTTL,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.secureCookies,
		MaxAge:   -1,
	})
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// pageHandler serves the SPA. Existing static assets are served as-is;
// page routes go through the navigation policy first, which yields
// either a redirect or the page to render.
func (s *Server) pageHandler() http.Handler {
	fileServer := http.FileServer(http.Dir(s.webDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)

		if reqPath != "/" {
			staticPath := path.Join(s.webDir, reqPath)
			if info, err := os.Stat(staticPath); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		}

		loggedIn := identityFrom(r.Context()) != nil
		if target, ok := app.DecidePage(loggedIn, reqPath).Redirect(); ok {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		switch reqPath {
		case "/auth/login":
			http.ServeFile(w, r, path.Join(s.webDir, "login.html"))
		case "/auth/register":
			http.ServeFile(w, r, path.Join(s.webDir, "register.html"))
		default:
			http.ServeFile(w, r, path.Join(s.webDir, "index.html"))
		}
	})
}
