package lktrack

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// TrailPoint is one past position of a trajectory
type TrailPoint struct {
	Frame    int
	Position Point
	Status   Status
}

// Trail returns past records of the trajectory, nearest first: frames frame-1 down to frame-depth.
// Frames without a record are skipped. depth is clamped to [0, MaxHistory].
func Trail(store *Store, id, frame, depth int) ([]TrailPoint, error) {
	traj, err := store.Trajectory(id)
	if err != nil {
		return nil, err
	}
	depth = clampInt(depth, 0, MaxHistory)
	trail := make([]TrailPoint, 0, depth)
	for t := 1; t <= depth; t++ {
		histFrame := frame - t
		if histFrame < 0 {
			break
		}
		rec, ok := traj.At(histFrame)
		if !ok {
			continue
		}
		trail = append(trail, TrailPoint{Frame: histFrame, Position: rec.Position, Status: rec.Status})
	}
	return trail, nil
}

// TrailSmoother smooths trails with 2D Kalman filter for overlay drawing
type TrailSmoother struct {
	dt       float64
	ux       float64
	uy       float64
	stdDevA  float64
	stdDevMx float64
	stdDevMy float64
}

// NewTrailSmootherDefault creates TrailSmoother with default filter parameters
func NewTrailSmootherDefault() *TrailSmoother {
	return NewTrailSmoother(1.0, 0.0, 0.0, 2.0, 0.1, 0.1)
}

// NewTrailSmoother creates new instance of TrailSmoother
func NewTrailSmoother(dt, ux, uy, stdDevA, stdDevMx, stdDevMy float64) *TrailSmoother {
	return &TrailSmoother{
		dt:       dt,
		ux:       ux,
		uy:       uy,
		stdDevA:  stdDevA,
		stdDevMx: stdDevMx,
		stdDevMy: stdDevMy,
	}
}

// Smooth filters the trail (nearest first, as returned by Trail) and returns the filtered trail in the same order.
// Only Valid and NotTracked records are fed into the filter, the rest are passed through.
func (smoother *TrailSmoother) Smooth(trail []TrailPoint) ([]TrailPoint, error) {
	smoothed := make([]TrailPoint, len(trail))
	copy(smoothed, trail)
	var kf *kalman_filter.Kalman2D
	// Oldest record first
	for i := len(smoothed) - 1; i >= 0; i-- {
		if !smoothed[i].Status.Trackable() {
			continue
		}
		pos := smoothed[i].Position
		if kf == nil {
			kf = kalman_filter.NewKalman2D(smoother.dt, smoother.ux, smoother.uy, smoother.stdDevA, smoother.stdDevMx, smoother.stdDevMy, kalman_filter.WithState2D(pos.X, pos.Y))
			continue
		}
		kf.Predict()
		err := kf.Update(pos.X, pos.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "can't smooth trail at frame %d", smoothed[i].Frame)
		}
		stateX, stateY := kf.GetState()
		smoothed[i].Position = Point{X: stateX, Y: stateY}
	}
	return smoothed, nil
}

// HistoryBound returns the largest useful trail depth: the span of recorded frames capped by MaxHistory
func HistoryBound(store *Store) int {
	first, last, ok := store.FrameSpan()
	if !ok {
		return 0
	}
	return minInt(last-first, MaxHistory)
}

// Project returns the flat view of given frame
func (s *Session) Project(frame int) FrameView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.store, frame, s.cfg, s.active)
}

// Trail returns the trail of the trajectory using the configured history depth
func (s *Session) Trail(id, frame int) ([]TrailPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Trail(s.store, id, frame, s.cfg.History)
}

// Trails returns trails of every trajectory existing at frame, keyed by trajectory id
func (s *Session) Trails(frame int) (map[int][]TrailPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trails := make(map[int][]TrailPoint)
	if s.cfg.History == 0 {
		return trails, nil
	}
	for id := range s.store.IDsAt(frame) {
		trail, err := Trail(s.store, id, frame, s.cfg.History)
		if err != nil {
			return nil, err
		}
		trails[id] = trail
	}
	return trails, nil
}

// HistoryBound returns the largest useful trail depth
func (s *Session) HistoryBound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HistoryBound(s.store)
}
