// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"log/slog"
	"net/http"

	"timetrack/internal/logging"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := s.auth.CreateSession(r.Context(), identity.ID)
	if err != nil {
		// No cookie may reach the client when the session was not persisted.
		writeServiceError(w, r, err)
		return
	}

	logging.WithUser(identity.ID).InfoContext(r.Context(), "user registered")
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"sessionToken": token,
		"user":         identity,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := s.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := s.auth.CreateSession(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"sessionToken": token,
		"user":         identity,
	})
}

// handleLogout is idempotent: it always clears the cookie and reports
// success, whether or not a session existed. A store fault during
// deletion is logged but never surfaces; the client's cookie is
// revoked regardless, and the sweep reclaims the row later.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := s.auth.DeleteSession(r.Context(), cookie.Value); err != nil {
			slog.WarnContext(r.Context(), "session deletion failed on logout", "error", err)
		}
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.oidc != nil,
	})
}
