package api

import (
	"fmt"
	"net/http"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
)

// handleRankingChart renders the leaderboard as a PNG bar chart, one bar
// per position.
func (s *Server) handleRankingChart(w http.ResponseWriter, r *http.Request) {
	scope, limit, err := rankingParams(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if limit > 20 {
		limit = 20
	}

	result, err := s.progression.GetRanking(r.Context(), scope, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Ranking chart query failed", attr.Error(err))
		respondInternal(w)
		return
	}
	if result.IsFailure() {
		respondDomainError(w, *result.Failure)
		return
	}
	rows := *result.Success
	if len(rows) == 0 {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "no ranking data"})
		return
	}

	bars := make([]chart.Value, len(rows))
	for i, row := range rows {
		label := row.UserID.String()
		if len(label) > 8 {
			label = label[:8]
		}
		bars[i] = chart.Value{
			Value: float64(row.Points),
			Label: fmt.Sprintf("#%d %s", row.Position, label),
		}
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Ranking (%s)", scope),
		Width:    960,
		Height:   480,
		BarWidth: 36,
		Bars:     bars,
	}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		s.logger.ErrorContext(r.Context(), "Ranking chart render failed", attr.Error(err))
	}
}
