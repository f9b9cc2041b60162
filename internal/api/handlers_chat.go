package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type chatRequest struct {
	Question     string `json:"question"`
	EmployeeName string `json:"employeeName"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.advisor.DocumentChat(r.Context(), req.EmployeeName, req.Question)
	if err != nil {
		s.log.Error("document chat failed", "error", err)
		jsonError(w, "analysis failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"answer": answer})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	recipient := chi.URLParam(r, "employeeName")

	summary, err := s.advisor.DocumentSummary(r.Context(), recipient)
	if err != nil {
		s.log.Error("summary failed", "recipient", recipient, "error", err)
		jsonError(w, "summary failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"summary": summary})
}

func (s *Server) handleGeneralChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.advisor.GeneralChat(r.Context(), req.Question)
	if err != nil {
		s.log.Error("general chat failed", "error", err)
		jsonError(w, "chat failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"answer": answer})
}

func (s *Server) handleGeneralSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.advisor.GeneralSummary(r.Context())
	if err != nil {
		s.log.Error("general summary failed", "error", err)
		jsonError(w, "summary failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"summary": summary})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
