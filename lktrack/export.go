package lktrack

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ExportRow is one exported (frame, trajectory) pair
type ExportRow struct {
	Frame          int
	ID             int
	X              float64
	Y              float64
	Classification uint64
}

// ExportRows returns a row for every (frame, trajectory) pair projected as Valid, ascending by frame and then by id
func ExportRows(store *Store, cfg Config, active int) []ExportRow {
	rows := make([]ExportRow, 0)
	for _, frame := range store.Frames() {
		for id := range store.IDsAt(frame) {
			rec, ok := store.Get(id, frame)
			if !ok {
				continue
			}
			if projectStatus(rec.Status, cfg.TrackOnlyActive, id == active) != StatusValid {
				continue
			}
			rows = append(rows, ExportRow{
				Frame:          frame,
				ID:             id,
				X:              rec.Position.X,
				Y:              rec.Position.Y,
				Classification: uint64(rec.Classification),
			})
		}
	}
	return rows
}

// Strings returns CSV fields of the row
func (row ExportRow) Strings() []string {
	return []string{
		strconv.Itoa(row.Frame),
		strconv.Itoa(row.ID),
		strconv.FormatFloat(row.X, 'f', -1, 64),
		strconv.FormatFloat(row.Y, 'f', -1, 64),
		strconv.FormatUint(row.Classification, 10),
	}
}

// WriteCSV writes rows as ';' separated values: frame;id;x;y;classification
func WriteCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	for i := range rows {
		err := writer.Write(rows[i].Strings())
		if err != nil {
			return errors.Wrapf(err, "can't write row %d", i)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "can't flush rows")
}

// ExportFileName returns export file path for given directory and time: output_lk_YEAR_MONTH_DAY_H_M_S.csv
func ExportFileName(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("output_lk_%s.csv", t.Format("2006_01_02_15_04_05")))
}

// ExportRows returns rows of every valid (frame, trajectory) pair
func (s *Session) ExportRows() []ExportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExportRows(s.store, s.cfg, s.active)
}
