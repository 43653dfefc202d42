package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := queryInt(r, "limit", 50)

	notifications, err := s.notifications.ListNotifications(r.Context(), sharedtypes.UserID(userID), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List notifications failed", attr.Error(err))
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
