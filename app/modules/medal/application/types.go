package medalservice

import (
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// GrantInput identifies one grant attempt.
type GrantInput struct {
	UserID        sharedtypes.UserID
	AchievementID string
}

// GrantOutput reports the outcome. AlreadyOwned true means the grant was a
// duplicate for the scope period and nothing else happened; Award is nil
// when the achievement carries no points or the payout failed downstream.
type GrantOutput struct {
	Granted         bool
	AlreadyOwned    bool
	AchievementName string
	Period          string
	Award           *progressionservice.AwardOutput
}

// GrantRecord is one historical grant as exposed to callers.
type GrantRecord struct {
	AchievementID string
	Period        string
	GrantedAt     string
}
