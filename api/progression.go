package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

type awardRequest struct {
	UserID      string         `json:"user_id"`
	BaseAmount  int64          `json:"base_amount"`
	ActionType  string         `json:"action_type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type awardResponse struct {
	FinalAmount   int64         `json:"final_amount"`
	PreviousTotal int64         `json:"previous_total"`
	NewTotal      int64         `json:"new_total"`
	Multiplier    float64       `json:"multiplier"`
	Tier          string        `json:"tier,omitempty"`
	SeasonID      string        `json:"season_id,omitempty"`
	RankChange    *rankChangeTO `json:"rank_change,omitempty"`
}

type rankChangeTO struct {
	OldRankID   string `json:"old_rank_id"`
	NewRankID   string `json:"new_rank_id"`
	NewRankName string `json:"new_rank_name"`
	Changed     bool   `json:"changed"`
}

func toRankChangeTO(rc *progressionservice.RankChange) *rankChangeTO {
	if rc == nil {
		return nil
	}
	return &rankChangeTO{
		OldRankID:   rc.OldRankID,
		NewRankID:   rc.NewRankID,
		NewRankName: rc.NewRankName,
		Changed:     rc.Changed,
	}
}

func (s *Server) handleAwardPoints(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.progression.AwardPoints(r.Context(), progressionservice.AwardInput{
		UserID:      sharedtypes.UserID(req.UserID),
		BaseAmount:  req.BaseAmount,
		ActionType:  sharedtypes.ActionType(req.ActionType),
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Award points failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}

	out := result.Success
	respondJSON(w, http.StatusOK, awardResponse{
		FinalAmount:   out.FinalAmount,
		PreviousTotal: out.PreviousTotal,
		NewTotal:      out.NewTotal,
		Multiplier:    out.Multiplier,
		Tier:          out.Tier,
		SeasonID:      out.SeasonID,
		RankChange:    toRankChangeTO(out.RankChange),
	})
}

type adjustRequest struct {
	UserID string `json:"user_id"`
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

func (s *Server) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.progression.AdjustPoints(r.Context(), sharedtypes.UserID(req.UserID), req.Delta, req.Reason)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Adjust points failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}

	out := result.Success
	respondJSON(w, http.StatusOK, map[string]any{
		"delta":       out.Delta,
		"new_total":   out.NewTotal,
		"rank_change": toRankChangeTO(out.RankChange),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := queryInt(r, "limit", 50)

	result, err := s.progression.GetPointHistory(r.Context(), sharedtypes.UserID(userID), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Get history failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": result.Success})
}

func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	scope, limit, err := rankingParams(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.progression.GetRanking(r.Context(), scope, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Get ranking failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"scope":   scope,
		"ranking": result.Success,
	})
}

func rankingParams(r *http.Request) (sharedtypes.RankingScope, int, error) {
	scope := sharedtypes.RankingScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = sharedtypes.ScopeLifetime
	}
	if !scope.Valid() {
		return "", 0, fmt.Errorf("unknown ranking scope %q", scope)
	}
	return scope, queryInt(r, "limit", 20), nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
