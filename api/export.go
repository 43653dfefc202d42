package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
)

// handleRankingExport streams the leaderboard as an XLSX workbook for the
// admin dashboard.
func (s *Server) handleRankingExport(w http.ResponseWriter, r *http.Request) {
	scope, limit, err := rankingParams(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.progression.GetRanking(r.Context(), scope, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Ranking export query failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ranking"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		s.logger.ErrorContext(r.Context(), "Ranking export sheet setup failed", attr.Error(err))
		respondInternal(w)
		return
	}
	headers := []any{"Position", "User ID", "Points"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		s.logger.ErrorContext(r.Context(), "Ranking export header failed", attr.Error(err))
		respondInternal(w)
		return
	}
	for i, row := range *result.Success {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{row.Position, row.UserID.String(), row.Points}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			s.logger.ErrorContext(r.Context(), "Ranking export row failed", attr.Error(err))
			respondInternal(w)
			return
		}
	}

	filename := fmt.Sprintf("ranking-%s-%s.xlsx", scope, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		s.logger.ErrorContext(r.Context(), "Ranking export write failed", attr.Error(err))
	}
}
