package progressionservice

import (
	"context"
	"fmt"

	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// ResolveRank recomputes a member's rank as a pure function of current
// lifetime points: the highest-threshold rank whose requirement is met, or
// the lowest rank when none is. Rank is never sticky; an administrative
// correction that lowers lifetime points moves the rank down through this
// same path.
func (s *ProgressionService) ResolveRank(ctx context.Context, userID sharedtypes.UserID) (*RankChange, error) {
	state, err := s.repo.GetScoreState(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("ResolveRank: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("ResolveRank: %w", progressiondb.ErrScoreStateNotFound)
	}

	ranks, err := s.repo.ListRanksDesc(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ResolveRank: %w", err)
	}
	if len(ranks) == 0 {
		return &RankChange{OldRankID: state.CurrentRankID, NewRankID: state.CurrentRankID}, nil
	}

	target := selectRank(ranks, state.LifetimePoints)

	change := &RankChange{
		OldRankID:   state.CurrentRankID,
		NewRankID:   target.ID,
		NewRankName: target.Name,
	}
	if target.ID == state.CurrentRankID {
		return change, nil
	}

	changed, err := s.repo.UpdateRank(ctx, nil, userID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("ResolveRank: %w", err)
	}
	change.Changed = changed
	return change, nil
}

// selectRank picks the first rank (scanning thresholds descending) whose
// requirement is met; the last element is the default lowest rank.
func selectRank(ranksDesc []progressiondb.Rank, lifetimePoints int64) progressiondb.Rank {
	for _, rank := range ranksDesc {
		if rank.PointsRequired <= lifetimePoints {
			return rank
		}
	}
	return ranksDesc[len(ranksDesc)-1]
}
