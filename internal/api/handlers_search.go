package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type searchRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"answer": s.search.Query(r.Context(), req.Question)})
}

func (s *Server) handleSearchTopic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	writeJSON(w, map[string]string{"answer": s.search.Quick(r.Context(), topic)})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stats.Snapshot())
}
