package seasonservice

import (
	"time"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// CreateSeasonInput describes a new competition window. StartsAt/EndsAt
// accept natural language ("next monday", "in 3 months") as well as
// RFC 3339 timestamps.
type CreateSeasonInput struct {
	Name     string
	StartsAt string
	EndsAt   string
}

// SeasonView is a season as exposed to callers.
type SeasonView struct {
	ID       string
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
	Status   string
}

// WinnerView is one frozen podium entry.
type WinnerView struct {
	Position int64
	UserID   sharedtypes.UserID
	Points   int64
}

// FinishedSeason reports one season closed by a rollover run.
type FinishedSeason struct {
	SeasonID   string
	SeasonName string
	Winners    []WinnerView
	ResetCount int64
}

// RolloverOutput summarizes one rollover run. Empty Finished and a nil
// Activated means the run was a no-op, which is the normal daily case.
type RolloverOutput struct {
	Finished  []FinishedSeason
	Activated *SeasonView
}
