package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleInferenceStats(w http.ResponseWriter, r *http.Request) {
	if s.recognizer == nil || s.recognizer.Stats() == nil {
		jsonError(w, "inference stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"backend": s.recognizer.Name(),
		"stats":   s.recognizer.Stats().Snapshot(),
	})
}
