package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
)

type createSeasonRequest struct {
	Name     string `json:"name"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
}

func (s *Server) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	var req createSeasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.seasons.CreateSeason(r.Context(), seasonservice.CreateSeasonInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create season failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusCreated, result.Success)
}

func (s *Server) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	result, err := s.seasons.ListSeasons(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List seasons failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"seasons": result.Success})
}

func (s *Server) handleGetActiveSeason(w http.ResponseWriter, r *http.Request) {
	result, err := s.seasons.GetActiveSeason(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Get active season failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, result.Success)
}

func (s *Server) handleGetWinners(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")

	result, err := s.seasons.GetSeasonWinners(r.Context(), seasonID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Get season winners failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"winners": result.Success})
}

// handleRollover is the external daily trigger. The run is idempotent so
// double-firing (cron plus the in-process scheduler) is harmless.
func (s *Server) handleRollover(w http.ResponseWriter, r *http.Request) {
	result, err := s.seasons.RunRollover(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Rollover failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, result.Success)
}
