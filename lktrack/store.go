package lktrack

import (
	"iter"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
)

// Store is the ordered collection of trajectories. Position in the collection is the trajectory identity,
// and since nothing is ever removed, ids stay stable for the whole session.
type Store struct {
	trajectories []*Trajectory
	// frame -> ids having a record at that frame
	byFrame map[int]*roaring.Bitmap
}

// NewStore creates empty store
func NewStore() *Store {
	return &Store{
		trajectories: make([]*Trajectory, 0, 32),
		byFrame:      make(map[int]*roaring.Bitmap),
	}
}

// Count returns number of trajectories
func (store *Store) Count() int {
	return len(store.trajectories)
}

// Create appends a new trajectory holding a single record at given frame and returns its id
func (store *Store) Create(frame int, rec PointRecord) (int, error) {
	if frame < 0 {
		return -1, errors.Wrapf(ErrOutOfRange, "frame %d", frame)
	}
	if uint64(len(store.trajectories)) >= math.MaxUint32 {
		return -1, errors.Wrap(ErrOutOfRange, "too many trajectories")
	}
	id := len(store.trajectories)
	store.trajectories = append(store.trajectories, newTrajectory(id))
	store.add(id, frame, rec)
	return id, nil
}

// Append appends record to the trajectory. Same-frame records are last-write-wins.
func (store *Store) Append(id, frame int, rec PointRecord) error {
	if id < 0 || id >= len(store.trajectories) {
		return errors.Wrapf(ErrOutOfRange, "trajectory id %d (count %d)", id, len(store.trajectories))
	}
	if frame < 0 {
		return errors.Wrapf(ErrOutOfRange, "frame %d", frame)
	}
	store.add(id, frame, rec)
	return nil
}

func (store *Store) add(id, frame int, rec PointRecord) {
	rec.Placeholder = false
	store.trajectories[id].add(frame, rec)
	ids, ok := store.byFrame[frame]
	if !ok {
		ids = roaring.New()
		store.byFrame[frame] = ids
	}
	ids.Add(uint32(id))
}

// Get returns the record of trajectory at exactly given frame
func (store *Store) Get(id, frame int) (PointRecord, bool) {
	if id < 0 || id >= len(store.trajectories) {
		return PointRecord{}, false
	}
	return store.trajectories[id].At(frame)
}

// Trajectory returns trajectory by id
func (store *Store) Trajectory(id int) (*Trajectory, error) {
	if id < 0 || id >= len(store.trajectories) {
		return nil, errors.Wrapf(ErrOutOfRange, "trajectory id %d (count %d)", id, len(store.trajectories))
	}
	return store.trajectories[id], nil
}

// HasAnyAt reports whether some trajectory has a record at given frame
func (store *Store) HasAnyAt(frame int) bool {
	ids, ok := store.byFrame[frame]
	return ok && !ids.IsEmpty()
}

// IDsAt iterates ids of trajectories having a record at given frame in ascending order
func (store *Store) IDsAt(frame int) iter.Seq[int] {
	return func(yield func(int) bool) {
		ids, ok := store.byFrame[frame]
		if !ok {
			return
		}
		it := ids.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// Frames returns every frame holding at least one record, ascending
func (store *Store) Frames() []int {
	frames := make([]int, 0, len(store.byFrame))
	for frame := range store.byFrame {
		frames = append(frames, frame)
	}
	sort.Ints(frames)
	return frames
}

// FrameSpan returns the first and the last frame holding records
func (store *Store) FrameSpan() (first, last int, ok bool) {
	for frame := range store.byFrame {
		if !ok {
			first, last, ok = frame, frame, true
			continue
		}
		first = minInt(first, frame)
		last = maxInt(last, frame)
	}
	return first, last, ok
}
