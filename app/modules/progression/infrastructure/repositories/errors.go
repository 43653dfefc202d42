package progressiondb

import "errors"

var (
	// ErrScoreStateNotFound is returned when a member has no score row and
	// the operation cannot create one.
	ErrScoreStateNotFound = errors.New("score state not found")

	// ErrRankNotFound is returned when a referenced rank does not exist.
	ErrRankNotFound = errors.New("rank not found")
)
