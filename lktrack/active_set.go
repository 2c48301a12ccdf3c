package lktrack

import (
	"github.com/pkg/errors"
)

// Eligible is a point submitted to the flow engine together with the trajectory it belongs to
type Eligible struct {
	ID       int
	Position Point
}

// Split picks the points which take part in this round of flow computation.
//
// When only the active point is tracked, the result holds at most the active point and only if it is projected as Valid.
// Otherwise it holds every projected Valid point in ascending id order.
func Split(view FrameView, cfg Config, active int) []Eligible {
	if cfg.TrackOnlyActive {
		if active >= 0 && active < view.Len() && view.Statuses[active] == StatusValid {
			return []Eligible{{ID: active, Position: view.Positions[active]}}
		}
		return []Eligible{}
	}
	eligible := make([]Eligible, 0, view.Len())
	for id, status := range view.Statuses {
		if status == StatusValid {
			eligible = append(eligible, Eligible{ID: id, Position: view.Positions[id]})
		}
	}
	return eligible
}

// Positions returns positions of eligible points in the same order
func Positions(eligible []Eligible) []Point {
	positions := make([]Point, len(eligible))
	for i := range eligible {
		positions[i] = eligible[i].Position
	}
	return positions
}

// Join scatters flow results back into full-size arrays aligned with trajectory ids.
//
// next[k] and ok[k] belong to eligible[k]. Points which were not submitted keep their position and are reported as successful,
// since they were never evaluated. With FreezeLastGood a failed point keeps its prior position as well.
func Join(view FrameView, eligible []Eligible, next []Point, ok []bool, policy FailurePolicy) ([]Point, []bool, error) {
	if len(next) != len(ok) {
		return nil, nil, errors.Wrapf(ErrLengthMismatch, "flow returned %d positions and %d flags", len(next), len(ok))
	}
	if len(next) != len(eligible) {
		return nil, nil, errors.Wrapf(ErrLengthMismatch, "flow returned %d positions for %d points", len(next), len(eligible))
	}
	positions := make([]Point, view.Len())
	copy(positions, view.Positions)
	success := make([]bool, view.Len())
	for i := range success {
		success[i] = true
	}
	for k, e := range eligible {
		if e.ID < 0 || e.ID >= view.Len() {
			return nil, nil, errors.Wrapf(ErrOutOfRange, "eligible point %d refers to trajectory %d (count %d)", k, e.ID, view.Len())
		}
		success[e.ID] = ok[k]
		if !ok[k] && policy == FreezeLastGood {
			continue
		}
		positions[e.ID] = next[k]
	}
	return positions, success, nil
}
