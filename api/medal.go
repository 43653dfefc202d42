package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	medalservice "github.com/ig0rayres/legendario-engine/app/modules/medal/application"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

type grantRequest struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
}

func (s *Server) handleGrantMedal(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.medals.GrantAchievement(r.Context(), medalservice.GrantInput{
		UserID:        sharedtypes.UserID(req.UserID),
		AchievementID: req.AchievementID,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Grant achievement failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}

	out := result.Success
	resp := map[string]any{
		"granted":       out.Granted,
		"already_owned": out.AlreadyOwned,
		"achievement":   out.AchievementName,
	}
	if out.Award != nil {
		resp["points_awarded"] = out.Award.FinalAmount
		resp["rank_change"] = toRankChangeTO(out.Award.RankChange)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	result, err := s.medals.ListAchievements(r.Context(), activeOnly)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List achievements failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"achievements": result.Success})
}

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := s.medals.GetGrantsForUser(r.Context(), sharedtypes.UserID(userID))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List grants failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"medals": result.Success})
}
