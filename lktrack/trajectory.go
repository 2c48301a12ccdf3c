package lktrack

import "sort"

type frameRecord struct {
	frame  int
	record PointRecord
}

// Trajectory is the time history of one tracked point.
// Records are only ever appended: an edit of an already recorded frame appends a newer record for that frame,
// and the newest record wins for exact-frame lookups.
type Trajectory struct {
	id int
	// Append log, never mutated in place
	log []frameRecord
	// frame -> index of the newest entry in log for that frame
	latest map[int]int
	// Distinct frames with records, ascending
	frames []int
}

func newTrajectory(id int) *Trajectory {
	return &Trajectory{
		id:     id,
		log:    make([]frameRecord, 0, 16),
		latest: make(map[int]int),
		frames: make([]int, 0, 16),
	}
}

// GetID returns trajectory's identifier (its index in the store)
func (traj *Trajectory) GetID() int {
	return traj.id
}

func (traj *Trajectory) add(frame int, rec PointRecord) {
	traj.log = append(traj.log, frameRecord{frame: frame, record: rec})
	if _, ok := traj.latest[frame]; !ok {
		// Most appends happen at the end of the timeline
		n := len(traj.frames)
		if n == 0 || traj.frames[n-1] < frame {
			traj.frames = append(traj.frames, frame)
		} else {
			idx := sort.SearchInts(traj.frames, frame)
			traj.frames = append(traj.frames, 0)
			copy(traj.frames[idx+1:], traj.frames[idx:])
			traj.frames[idx] = frame
		}
	}
	traj.latest[frame] = len(traj.log) - 1
}

// HasRecordAt reports whether there is a record at exactly given frame
func (traj *Trajectory) HasRecordAt(frame int) bool {
	_, ok := traj.latest[frame]
	return ok
}

// At returns the newest record at exactly given frame
func (traj *Trajectory) At(frame int) (PointRecord, bool) {
	idx, ok := traj.latest[frame]
	if !ok {
		return PointRecord{}, false
	}
	return traj.log[idx].record, true
}

// LatestAtOrBefore returns the record of the latest recorded frame which is not after given one
func (traj *Trajectory) LatestAtOrBefore(frame int) (int, PointRecord, bool) {
	idx := sort.SearchInts(traj.frames, frame+1)
	if idx == 0 {
		return 0, PointRecord{}, false
	}
	found := traj.frames[idx-1]
	return found, traj.log[traj.latest[found]].record, true
}

// Revisions returns every record appended for given frame, oldest first
func (traj *Trajectory) Revisions(frame int) []PointRecord {
	if !traj.HasRecordAt(frame) {
		return nil
	}
	revisions := make([]PointRecord, 0, 1)
	for _, entry := range traj.log {
		if entry.frame == frame {
			revisions = append(revisions, entry.record)
		}
	}
	return revisions
}

// Frames returns copy of recorded frames in ascending order
func (traj *Trajectory) Frames() []int {
	frames := make([]int, len(traj.frames))
	copy(frames, traj.frames)
	return frames
}

// FirstFrame returns the earliest recorded frame
func (traj *Trajectory) FirstFrame() (int, bool) {
	if len(traj.frames) == 0 {
		return 0, false
	}
	return traj.frames[0], true
}

// LastFrame returns the latest recorded frame
func (traj *Trajectory) LastFrame() (int, bool) {
	if len(traj.frames) == 0 {
		return 0, false
	}
	return traj.frames[len(traj.frames)-1], true
}

// Len returns number of appended records including superseded ones
func (traj *Trajectory) Len() int {
	return len(traj.log)
}
