package seasonevents

import (
	"time"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

const (
	// TopicSeasonFinished announces a completed rollover for one season.
	TopicSeasonFinished = "season.finished"
	// TopicSeasonActivated announces a season entering its active window.
	TopicSeasonActivated = "season.activated"
)

// WinnerPayload is one frozen podium entry.
type WinnerPayload struct {
	Position int64              `json:"position"`
	UserID   sharedtypes.UserID `json:"user_id"`
	Points   int64              `json:"points"`
}

type SeasonFinishedPayload struct {
	SeasonID   string          `json:"season_id"`
	SeasonName string          `json:"season_name"`
	Winners    []WinnerPayload `json:"winners"`
	ResetCount int64           `json:"reset_count"`
	FinishedAt time.Time       `json:"finished_at"`
}

type SeasonActivatedPayload struct {
	SeasonID    string    `json:"season_id"`
	SeasonName  string    `json:"season_name"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	ActivatedAt time.Time `json:"activated_at"`
}
