package apperrors

import "errors"

// Error taxonomy shared by every module. Services return these (wrapped) so
// the transport layer can map them without knowing module internals.
var (
	// ErrValidation marks malformed input. No state change occurred.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing referenced entity. No state change occurred.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an operation rejected by a concurrent-safety guard.
	// Callers that expect the race (achievement grants, season transitions)
	// treat it as a benign idempotent outcome.
	ErrConflict = errors.New("conflict")

	// ErrDependencyFailure marks a failed best-effort collaborator
	// (history write, notification, chat). It is logged for operational
	// visibility and never propagated as a failure of the primary operation.
	ErrDependencyFailure = errors.New("dependency failure")
)

// IsBenign reports whether err is a conflict outcome callers should fold
// into an idempotent success.
func IsBenign(err error) bool {
	return errors.Is(err, ErrConflict)
}
