package lktrack

// Status is the tracking status of a trajectory at a single frame.
type Status uint8

const (
	// StatusValid means the point was tracked successfully and can be tracked further
	StatusValid Status = iota
	// StatusInvalid means tracking failed or the user marked the point as failed.
	// Invalid points are never retried automatically.
	StatusInvalid
	// StatusNonExistent means there is no record for the trajectory at the frame
	StatusNonExistent
	// StatusNotTracked means the point is excluded from flow computation for now
	// (only the active point is tracked). It resumes once the exclusion ends.
	StatusNotTracked
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusNonExistent:
		return "non_existent"
	case StatusNotTracked:
		return "not_tracked"
	default:
		return "unknown"
	}
}

// Trackable reports whether the status takes part in a tracking pass (Valid or NotTracked)
func (s Status) Trackable() bool {
	return s == StatusValid || s == StatusNotTracked
}
