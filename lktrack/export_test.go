package lktrack

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestExportRowsOrdering(t *testing.T) {
	store := NewStore()
	// Created in reverse frame order on purpose
	_, _ = store.Create(2, NewPointRecord(NewPoint(1, 1)))
	_, _ = store.Create(0, NewPointRecord(NewPoint(2, 2)))
	_, _ = store.Create(1, PointRecord{Position: NewPoint(3, 3), Status: StatusInvalid})
	_ = store.Append(1, 2, PointRecord{Position: NewPoint(2.5, 2.5), Status: StatusValid, Classification: 5})
	_ = store.Append(0, 3, PointRecord{Position: NewPoint(4, 4), Status: StatusNotTracked})

	rows := ExportRows(store, DefaultConfig(), NoActivePoint)
	correctAnswer := []ExportRow{
		{Frame: 0, ID: 1, X: 2, Y: 2},
		{Frame: 2, ID: 0, X: 1, Y: 1},
		{Frame: 2, ID: 1, X: 2.5, Y: 2.5, Classification: 5},
	}
	if len(rows) != len(correctAnswer) {
		t.Fatalf("Wrong answer: %+v, correct answer: %+v", rows, correctAnswer)
	}
	for i := range rows {
		if rows[i] != correctAnswer[i] {
			t.Errorf("Row %d. Wrong answer: %+v, correct answer: %+v", i, rows[i], correctAnswer[i])
		}
	}

	// Masked points are not exported
	rows = ExportRows(store, DefaultConfig().WithTrackOnlyActive(true), 1)
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 1 {
		t.Errorf("Only the active point should be exported, got %+v", rows)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}
	correctCSV := "0;1;2;2;0\n2;1;2.5;2.5;5\n"
	if buf.String() != correctCSV {
		t.Errorf("Wrong answer: %q, correct answer: %q", buf.String(), correctCSV)
	}
}

func TestExportFileName(t *testing.T) {
	name := ExportFileName("/tmp/out", testTime)
	correctAnswer := filepath.Join("/tmp/out", "output_lk_2024_03_15_13_07_42.csv")
	if name != correctAnswer {
		t.Errorf("Wrong answer: %s, correct answer: %s", name, correctAnswer)
	}
}
