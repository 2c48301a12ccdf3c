package lktrack

import (
	"math"

	"github.com/pkg/errors"
)

// CreatePoint places a new point at p on the current frame and makes it the active one.
// The request is rejected with ErrTooClose when p is within the minimum distance of an existing point.
func (s *Session) CreatePoint(p Point) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := s.currentIndex
	view := Project(s.store, frame, s.cfg, s.active)
	for id, status := range view.Statuses {
		if status == StatusNonExistent {
			continue
		}
		if p.DistanceTo(view.Positions[id]) <= s.cfg.MinPointDistance {
			s.logger.Warn().Int("frame", frame).Int("id", id).Msg("Too close to an existing point")
			return NoActivePoint, errors.Wrapf(ErrTooClose, "point %d at frame %d", id, frame)
		}
	}

	pos := p
	if s.current != nil {
		pos = s.refiner.Refine(s.current, p, s.cfg.WindowSize)
	}
	id, err := s.store.Create(frame, NewPointRecord(pos))
	if err != nil {
		return NoActivePoint, errors.Wrap(err, "can't create point")
	}
	s.active = id
	s.logger.Debug().Int("frame", frame).Int("id", id).Float64("x", pos.X).Float64("y", pos.Y).Msg("Created point")
	return id, nil
}

// ActivateNearest selects the point closest to p on the current frame
func (s *Session) ActivateNearest(p Point) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := s.currentIndex
	view := Project(s.store, frame, s.cfg, s.active)
	closest := NoActivePoint
	minDist := math.MaxFloat64
	for id, status := range view.Statuses {
		if status == StatusNonExistent {
			continue
		}
		dist := p.DistanceTo(view.Positions[id])
		if dist < minDist {
			minDist = dist
			closest = id
		}
	}
	if closest == NoActivePoint {
		s.active = NoActivePoint
		s.logger.Warn().Int("frame", frame).Msg("There are no points to select")
		return NoActivePoint, errors.Wrapf(ErrNoPoints, "frame %d", frame)
	}
	s.active = closest
	return closest, nil
}

// Activate selects trajectory by id
func (s *Session) Activate(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= s.store.Count() {
		return errors.Wrapf(ErrOutOfRange, "trajectory id %d (count %d)", id, s.store.Count())
	}
	s.active = id
	return nil
}

// Deactivate clears active point selection
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = NoActivePoint
}

// MoveActive places the active point at p on the current frame as a Valid record
func (s *Session) MoveActive(p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == NoActivePoint {
		return ErrNoActivePoint
	}
	frame := s.currentIndex
	rec := NewPointRecord(p)
	if prev, ok := s.store.Get(s.active, frame); ok {
		rec.Classification = prev.Classification
	} else if traj, err := s.store.Trajectory(s.active); err == nil {
		if _, prev, ok := traj.LatestAtOrBefore(frame); ok {
			rec.Classification = prev.Classification
		}
	}
	if err := s.store.Append(s.active, frame, rec); err != nil {
		s.logger.Warn().Int("id", s.active).Msg("Selected point is not in range")
		return errors.Wrap(err, "can't move active point")
	}
	return nil
}

// DeleteActive marks the active point Invalid at the current frame.
// The trajectory is kept, records at other frames are unaffected.
func (s *Session) DeleteActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == NoActivePoint {
		return ErrNoActivePoint
	}
	if s.active < 0 || s.active >= s.store.Count() {
		return errors.Wrapf(ErrOutOfRange, "trajectory id %d (count %d)", s.active, s.store.Count())
	}
	frame := s.currentIndex
	rec, ok := s.store.Get(s.active, frame)
	if !ok {
		return nil
	}
	return s.store.Append(s.active, frame, rec.withStatus(StatusInvalid))
}
