package lktrack

import "github.com/pkg/errors"

// AdvanceResult describes what a tracking pass changed
type AdvanceResult struct {
	// Trajectories appended at the frame
	Updated []int
	// Trajectories which became invalid at the frame
	Invalidated []int
	// Playback pause is requested (some point became invalid and "pause on invalid" is on)
	Pause bool
}

// SomeInvalid reports whether some point became invalid
func (res AdvanceResult) SomeInvalid() bool {
	return len(res.Invalidated) > 0
}

// Advance applies the results of a flow computation to the store.
//
// view is the projection the flow was computed from; positions and success are the joined (and clamped) flow outputs.
// Every point projected as Valid or NotTracked gets a new record at frame: it keeps its projected status if the flow succeeded
// and becomes Invalid otherwise. NonExistent and Invalid points are left untouched.
// A stored Invalid record at frame is never overwritten by a tracking pass, only user edits can recover it.
// Afterwards the classification flags of the active trajectory are synced with cfg.
func Advance(store *Store, view FrameView, positions []Point, success []bool, frame int, cfg Config, active int) (AdvanceResult, error) {
	res := AdvanceResult{}
	if len(positions) != view.Len() || len(success) != view.Len() {
		return res, errors.Wrapf(ErrLengthMismatch, "view has %d points, got %d positions and %d flags", view.Len(), len(positions), len(success))
	}
	if view.Len() > store.Count() {
		return res, errors.Wrapf(ErrLengthMismatch, "view has %d points, store has %d trajectories", view.Len(), store.Count())
	}
	for id, projected := range view.Statuses {
		if !projected.Trackable() {
			continue
		}
		if existing, ok := store.Get(id, frame); ok && existing.Status == StatusInvalid {
			continue
		}
		rec := view.Records[id]
		rec.Position = positions[id]
		if success[id] {
			rec = rec.withStatus(projected)
		} else {
			rec = rec.withStatus(StatusInvalid)
			res.Invalidated = append(res.Invalidated, id)
		}
		if err := store.Append(id, frame, rec); err != nil {
			return res, errors.Wrapf(err, "can't advance trajectory %d", id)
		}
		res.Updated = append(res.Updated, id)
	}
	res.Pause = res.SomeInvalid() && cfg.PauseOnInvalid
	if _, err := SyncClassification(store, frame, cfg, active); err != nil {
		return res, err
	}
	return res, nil
}

// SyncClassification writes the target classification flags of cfg into the active trajectory's record at frame.
// Non-active trajectories are untouched. It reports whether a new record was appended.
func SyncClassification(store *Store, frame int, cfg Config, active int) (bool, error) {
	if active < 0 || active >= store.Count() {
		return false, nil
	}
	rec, ok := store.Get(active, frame)
	if !ok {
		return false, nil
	}
	synced := rec.Classification.Apply(cfg.Classification, cfg.ClassificationBits)
	if synced == rec.Classification {
		return false, nil
	}
	rec.Classification = synced
	if err := store.Append(active, frame, rec); err != nil {
		return false, errors.Wrapf(err, "can't sync classification of trajectory %d", active)
	}
	return true, nil
}
