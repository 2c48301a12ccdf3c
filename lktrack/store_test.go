package lktrack

import (
	"testing"

	"github.com/pkg/errors"
)

func TestStoreCreateAppend(t *testing.T) {
	store := NewStore()
	idA, err := store.Create(0, NewPointRecord(NewPoint(10, 10)))
	if err != nil {
		t.Fatal(err)
	}
	idB, err := store.Create(3, NewPointRecord(NewPoint(50, 50)))
	if err != nil {
		t.Fatal(err)
	}
	if idA != 0 || idB != 1 {
		t.Errorf("Wrong ids: %d, %d, expected 0, 1", idA, idB)
	}
	if store.Count() != 2 {
		t.Errorf("Wrong count: %d, expected 2", store.Count())
	}

	err = store.Append(2, 1, NewPointRecord(NewPoint(1, 1)))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	err = store.Append(-1, 1, NewPointRecord(NewPoint(1, 1)))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if store.Count() != 2 {
		t.Errorf("Failed append should not change count, got %d", store.Count())
	}

	// Exact frame lookup only
	if _, ok := store.Get(idB, 2); ok {
		t.Error("Trajectory B should not exist before frame 3")
	}
	if _, ok := store.Get(idA, 1); ok {
		t.Error("Trajectory A has no record at frame 1")
	}
	rec, ok := store.Get(idB, 3)
	if !ok || rec.Position != NewPoint(50, 50) || rec.Status != StatusValid {
		t.Errorf("Wrong record at frame 3: %+v (found %t)", rec, ok)
	}

	first, last, ok := store.FrameSpan()
	if !ok || first != 0 || last != 3 {
		t.Errorf("Wrong frame span: %d-%d (%t), expected 0-3", first, last, ok)
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	store := NewStore()
	id, _ := store.Create(0, NewPointRecord(NewPoint(10, 10)))
	for frame := 1; frame <= 5; frame++ {
		err := store.Append(id, frame, NewPointRecord(NewPoint(10+float64(frame), 10)))
		if err != nil {
			t.Fatal(err)
		}
	}
	// Rewind and edit frame 3
	err := store.Append(id, 3, PointRecord{Position: NewPoint(100, 100), Status: StatusInvalid})
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := store.Get(id, 3)
	if rec.Position != NewPoint(100, 100) || rec.Status != StatusInvalid {
		t.Errorf("Wrong record at frame 3 after edit: %+v", rec)
	}
	// Other frames untouched
	rec, _ = store.Get(id, 4)
	if rec.Position != NewPoint(14, 10) || rec.Status != StatusValid {
		t.Errorf("Wrong record at frame 4: %+v", rec)
	}

	traj, err := store.Trajectory(id)
	if err != nil {
		t.Fatal(err)
	}
	revisions := traj.Revisions(3)
	if len(revisions) != 2 {
		t.Fatalf("Expected 2 revisions at frame 3, got %d", len(revisions))
	}
	if revisions[0].Position != NewPoint(13, 10) {
		t.Errorf("History should be kept untouched, got %+v", revisions[0])
	}
	if traj.Len() != 7 {
		t.Errorf("Wrong log length: %d, expected 7", traj.Len())
	}
	if len(traj.Frames()) != 6 {
		t.Errorf("Wrong number of distinct frames: %d, expected 6", len(traj.Frames()))
	}
}

func TestTrajectoryLatestAtOrBefore(t *testing.T) {
	store := NewStore()
	id, _ := store.Create(2, NewPointRecord(NewPoint(1, 1)))
	_ = store.Append(id, 7, NewPointRecord(NewPoint(7, 7)))
	// Out of order append (user edit after rewinding)
	_ = store.Append(id, 4, NewPointRecord(NewPoint(4, 4)))
	traj, _ := store.Trajectory(id)

	tests := []struct {
		frame     int
		found     bool
		wantFrame int
		wantPos   Point
	}{
		{frame: 1, found: false},
		{frame: 2, found: true, wantFrame: 2, wantPos: NewPoint(1, 1)},
		{frame: 3, found: true, wantFrame: 2, wantPos: NewPoint(1, 1)},
		{frame: 5, found: true, wantFrame: 4, wantPos: NewPoint(4, 4)},
		{frame: 100, found: true, wantFrame: 7, wantPos: NewPoint(7, 7)},
	}
	for _, test := range tests {
		frame, rec, ok := traj.LatestAtOrBefore(test.frame)
		if ok != test.found {
			t.Errorf("Frame %d. Wrong answer: %t, correct answer: %t", test.frame, ok, test.found)
			continue
		}
		if !ok {
			continue
		}
		if frame != test.wantFrame || rec.Position != test.wantPos {
			t.Errorf("Frame %d. Wrong answer: %d %v, correct answer: %d %v", test.frame, frame, rec.Position, test.wantFrame, test.wantPos)
		}
	}
	if first, _ := traj.FirstFrame(); first != 2 {
		t.Errorf("Wrong first frame: %d", first)
	}
	if last, _ := traj.LastFrame(); last != 7 {
		t.Errorf("Wrong last frame: %d", last)
	}
}

func TestStoreIDsAt(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		_, _ = store.Create(i%2, NewPointRecord(NewPoint(float64(i), 0)))
	}
	ids := []int{}
	for id := range store.IDsAt(0) {
		ids = append(ids, id)
	}
	correctAnswer := []int{0, 2, 4}
	if len(ids) != len(correctAnswer) {
		t.Fatalf("Wrong answer: %v, correct answer: %v", ids, correctAnswer)
	}
	for i := range ids {
		if ids[i] != correctAnswer[i] {
			t.Errorf("Wrong answer: %v, correct answer: %v", ids, correctAnswer)
		}
	}
	frames := store.Frames()
	if len(frames) != 2 || frames[0] != 0 || frames[1] != 1 {
		t.Errorf("Wrong frames: %v", frames)
	}
	if store.HasAnyAt(2) {
		t.Error("There are no records at frame 2")
	}
}

func TestClassification(t *testing.T) {
	var c Classification
	c, err := c.Set(0)
	if err != nil {
		t.Fatal(err)
	}
	c, _ = c.Set(2)
	c, _ = c.Set(10)
	if uint64(c) != 0b10000000101 {
		t.Errorf("Wrong answer: %b", uint64(c))
	}
	_, err = c.Set(ClassificationBits)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	// Only the first 3 bits follow the target, bit 10 stays
	target := Classification(0b010)
	applied := c.Apply(target, 3)
	if uint64(applied) != 0b10000000010 {
		t.Errorf("Wrong answer: %b, correct answer: %b", uint64(applied), 0b10000000010)
	}
	if !applied.Has(1) || applied.Has(0) || !applied.Has(10) {
		t.Errorf("Wrong bits: %b", uint64(applied))
	}
	if all := c.Apply(Classification(1), ClassificationBits); all != 1 {
		t.Errorf("Wrong answer: %b", uint64(all))
	}
}
