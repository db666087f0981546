package adapthttp

import (
	"net/http"
)

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		TaskID string `json:"taskId"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log, err := s.timers.Start(r.Context(), userID, req.TaskID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"timeLog": log})
}

func (s *Server) handleTimerStopActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	log, err := s.timers.StopActive(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeLog": log})
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	log, err := s.timers.Stop(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeLog": log})
}

func (s *Server) handleTimerActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	log, err := s.timers.Active(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	// log is nil when no timer is running; the client sees an explicit null.
	writeJSON(w, http.StatusOK, map[string]any{"activeTimer": log})
}

func (s *Server) handleTimerGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	log, err := s.timers.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeLog": log})
}
