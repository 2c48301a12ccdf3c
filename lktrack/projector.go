package lktrack

// NoActivePoint marks that no trajectory is selected
const NoActivePoint = -1

// FrameView is the flat per-frame view of the store: index i always corresponds to trajectory id i.
// It is derived on demand and never persisted.
type FrameView struct {
	Frame     int
	Positions []Point
	Statuses  []Status
	Records   []PointRecord
}

// Len returns number of trajectories in the view
func (view FrameView) Len() int {
	return len(view.Positions)
}

// Project builds the flat view of given frame.
//
// Trajectories without a record at exactly that frame are reported as StatusNonExistent with InvalidPoint and a placeholder record.
// When only the active point is tracked, every other stored Valid record is reported as StatusNotTracked
// and the active point's stored NotTracked record is reported as StatusValid.
// The override only affects the view, the store is never touched.
func Project(store *Store, frame int, cfg Config, active int) FrameView {
	n := store.Count()
	view := FrameView{
		Frame:     frame,
		Positions: make([]Point, n),
		Statuses:  make([]Status, n),
		Records:   make([]PointRecord, n),
	}
	for i := 0; i < n; i++ {
		rec, ok := store.Get(i, frame)
		if !ok {
			view.Positions[i] = InvalidPoint
			view.Statuses[i] = StatusNonExistent
			view.Records[i] = placeholderRecord()
			continue
		}
		view.Positions[i] = rec.Position
		view.Records[i] = rec
		view.Statuses[i] = projectStatus(rec.Status, cfg.TrackOnlyActive, i == active)
	}
	return view
}

// projectStatus masks stored status for the view.
// A stored NotTracked record of the active point is reported Valid while only the active point is tracked,
// so switching the active point resumes its tracking.
func projectStatus(stored Status, trackOnlyActive, isActive bool) Status {
	if !trackOnlyActive {
		return stored
	}
	switch {
	case stored == StatusValid && !isActive:
		return StatusNotTracked
	case stored == StatusNotTracked && isActive:
		return StatusValid
	}
	return stored
}
