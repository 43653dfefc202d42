package seasonadapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
)

// SeasonGatewayAdapter answers "which season is current" for the point
// engine. It reads the repository directly so the lookup can join an
// award's transaction when one is passed.
type SeasonGatewayAdapter struct {
	repo seasondb.Repository
}

func NewSeasonGatewayAdapter(repo seasondb.Repository) *SeasonGatewayAdapter {
	return &SeasonGatewayAdapter{repo: repo}
}

// ActiveSeasonID returns ("", false, nil) between seasons; that is a
// normal state, not an error.
func (a *SeasonGatewayAdapter) ActiveSeasonID(ctx context.Context, db bun.IDB) (string, bool, error) {
	season, err := a.repo.GetActiveSeason(ctx, db)
	if errors.Is(err, seasondb.ErrSeasonNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("seasonadapters.ActiveSeasonID: %w", err)
	}
	return season.ID, true, nil
}
