package lktrack

import (
	"testing"

	"github.com/pkg/errors"
)

func newMixedStore() *Store {
	store := NewStore()
	_, _ = store.Create(0, NewPointRecord(NewPoint(10, 10)))
	_, _ = store.Create(0, PointRecord{Position: NewPoint(20, 20), Status: StatusInvalid})
	_, _ = store.Create(1, NewPointRecord(NewPoint(30, 30)))
	_, _ = store.Create(0, NewPointRecord(NewPoint(40, 40)))
	_, _ = store.Create(0, PointRecord{Position: NewPoint(50, 50), Status: StatusNotTracked})
	return store
}

func TestSplit(t *testing.T) {
	store := newMixedStore()
	cfg := DefaultConfig()
	view := Project(store, 0, cfg, NoActivePoint)
	eligible := Split(view, cfg, NoActivePoint)
	correctIDs := []int{0, 3}
	if len(eligible) != len(correctIDs) {
		t.Fatalf("Wrong number of eligible points: %d, expected %d", len(eligible), len(correctIDs))
	}
	for k := range eligible {
		if eligible[k].ID != correctIDs[k] {
			t.Errorf("Wrong id: %d, expected %d", eligible[k].ID, correctIDs[k])
		}
		if eligible[k].Position != view.Positions[correctIDs[k]] {
			t.Errorf("Wrong position for id %d: %v", eligible[k].ID, eligible[k].Position)
		}
	}

	onlyActive := cfg.WithTrackOnlyActive(true)
	view = Project(store, 0, onlyActive, 3)
	eligible = Split(view, onlyActive, 3)
	if len(eligible) != 1 || eligible[0].ID != 3 {
		t.Errorf("Only the active point should be eligible, got %+v", eligible)
	}
	// Active point is invalid: nothing to track
	view = Project(store, 0, onlyActive, 1)
	if eligible = Split(view, onlyActive, 1); len(eligible) != 0 {
		t.Errorf("Invalid active point should not be eligible, got %+v", eligible)
	}
	view = Project(store, 0, onlyActive, NoActivePoint)
	if eligible = Split(view, onlyActive, NoActivePoint); len(eligible) != 0 {
		t.Errorf("Nothing should be eligible without active point, got %+v", eligible)
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	store := newMixedStore()
	cfg := DefaultConfig()
	view := Project(store, 0, cfg, NoActivePoint)
	eligible := Split(view, cfg, NoActivePoint)
	ok := make([]bool, len(eligible))
	for i := range ok {
		ok[i] = true
	}
	for _, policy := range []FailurePolicy{FreezeLastGood, KeepEngineOutput} {
		positions, success, err := Join(view, eligible, Positions(eligible), ok, policy)
		if err != nil {
			t.Fatal(err)
		}
		for i := range positions {
			if positions[i] != view.Positions[i] {
				t.Errorf("Position %d changed: %v -> %v", i, view.Positions[i], positions[i])
			}
			if !success[i] {
				t.Errorf("Point %d should be reported as successful", i)
			}
		}
	}
}

func TestJoinScatter(t *testing.T) {
	store := newMixedStore()
	cfg := DefaultConfig()
	view := Project(store, 0, cfg, NoActivePoint)
	eligible := Split(view, cfg, NoActivePoint)
	next := []Point{NewPoint(11, 12), NewPoint(-100, 5000)}
	ok := []bool{true, false}

	positions, success, err := Join(view, eligible, next, ok, FreezeLastGood)
	if err != nil {
		t.Fatal(err)
	}
	if positions[0] != NewPoint(11, 12) || !success[0] {
		t.Errorf("Wrong result for id 0: %v %t", positions[0], success[0])
	}
	if positions[3] != NewPoint(40, 40) || success[3] {
		t.Errorf("Failed point should keep its last good position: %v %t", positions[3], success[3])
	}
	// Not submitted points are never treated as failed
	for _, id := range []int{1, 2, 4} {
		if !success[id] {
			t.Errorf("Point %d was not submitted and should be successful", id)
		}
	}

	positions, _, err = Join(view, eligible, next, ok, KeepEngineOutput)
	if err != nil {
		t.Fatal(err)
	}
	if positions[3] != NewPoint(-100, 5000) {
		t.Errorf("Engine output should be kept: %v", positions[3])
	}
	Clamp(positions, 640, 480)
	for i, p := range positions {
		if p.X < 0 || p.X > 639 || p.Y < 0 || p.Y > 479 {
			t.Errorf("Point %d is out of frame after clamping: %v", i, p)
		}
	}
}

func TestJoinLengthMismatch(t *testing.T) {
	store := newMixedStore()
	cfg := DefaultConfig()
	view := Project(store, 0, cfg, NoActivePoint)
	eligible := Split(view, cfg, NoActivePoint)

	_, _, err := Join(view, eligible, []Point{NewPoint(1, 1), NewPoint(2, 2)}, []bool{true}, FreezeLastGood)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
	_, _, err = Join(view, eligible, []Point{NewPoint(1, 1)}, []bool{true}, FreezeLastGood)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
	_, _, err = Join(view, []Eligible{}, []Point{}, []bool{}, FreezeLastGood)
	if err != nil {
		t.Errorf("Empty join should succeed, got %v", err)
	}
}
