package handlers

import "net/http"

// StatsHandler godoc
// @Summary Entry statistics for the current user
// @Tags entries
// @Produce json
// @Success 200 {object} repo.Stats
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /api/stats [get]
// @Security SessionCookie
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	stats, err := s.journal.Stats(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HealthHandler godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResult
// @Router /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResult{Status: "ok"})
}
