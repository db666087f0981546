package adapthttp

import (
	"net/http"

	"timetrack/internal/app"
)

// Server is the driving HTTP adapter that routes requests to
// application services.
type Server struct {
	auth   *app.AuthService
	tasks  *app.TaskService
	timers *app.TimerService
	oidc   *OIDCConfig
	webDir string

	// secureCookies marks session cookies Secure (production only).
	secureCookies bool
}

// New creates a Server wired to the given application services. oidc
// may be nil when SSO is not configured.
func New(auth *app.AuthService, tasks *app.TaskService, timers *app.TimerService, oidc *OIDCConfig, webDir string, secureCookies bool) *Server {
	return &Server{
		auth:          auth,
		tasks:         tasks,
		timers:        timers,
		oidc:          oidc,
		webDir:        webDir,
		secureCookies: secureCookies,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("POST /users", s.handleRegister)
	api.HandleFunc("POST /sessions", s.handleLogin)
	api.HandleFunc("DELETE /sessions", s.handleLogout)
	api.HandleFunc("GET /config", s.handleConfig)
	api.HandleFunc("GET /sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /sso/callback", s.handleSSOCallback)

	api.HandleFunc("GET /tasks", s.handleTaskList)
	api.HandleFunc("POST /tasks", s.handleTaskCreate)
	api.HandleFunc("GET /tasks/{id}", s.handleTaskGet)
	api.HandleFunc("PUT /tasks/{id}", s.handleTaskUpdate)
	api.HandleFunc("DELETE /tasks/{id}", s.handleTaskDelete)

	api.HandleFunc("POST /timers", s.handleTimerStart)
	api.HandleFunc("GET /timers/active", s.handleTimerActive)
	api.HandleFunc("POST /timers/active/stop", s.handleTimerStopActive)
	api.HandleFunc("GET /timers/{id}", s.handleTimerGet)
	api.HandleFunc("POST /timers/{id}/stop", s.handleTimerStop)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", s.pageHandler())

	return s.loggingMiddleware(s.authMiddleware(withNoCache(root)))
}
