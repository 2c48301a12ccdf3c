package lktrack

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned for trajectory ids, frames or classification bits outside of bounds
	ErrOutOfRange = errors.New("out of range")
	// ErrLengthMismatch signals that parallel arrays handed over at a join boundary differ in length.
	// It never happens in correct operation.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrTooClose is returned when a new point is requested too close to an existing one
	ErrTooClose = errors.New("too close to an existing point")
	// ErrNoPoints is returned when there are no points to select
	ErrNoPoints = errors.New("there are no points to select")
	// ErrNoActivePoint is returned by edits which need an active point when none is selected
	ErrNoActivePoint = errors.New("no active point")
	// ErrInvalidConfig is returned when a configuration snapshot fails validation
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsAdvisory reports whether err is a user-facing signal which leaves the state untouched
func IsAdvisory(err error) bool {
	return errors.Is(err, ErrTooClose) ||
		errors.Is(err, ErrNoPoints) ||
		errors.Is(err, ErrNoActivePoint) ||
		errors.Is(err, ErrOutOfRange)
}
