package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// cachedResponse wraps cache-backed payloads so clients can tell a fresh
// value from a stale one served after an upstream failure.
type cachedResponse struct {
	Data  interface{} `json:"data"`
	Stale bool        `json:"stale"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondCached(w http.ResponseWriter, data interface{}, stale bool) {
	s.respondJSON(w, http.StatusOK, cachedResponse{Data: data, Stale: stale})
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
