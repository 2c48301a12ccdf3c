package exportdb

import (
	"context"
	"database/sql"

	"github.com/LdDl/lktrack-go/lktrack"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS lk_points (
	session_id     TEXT    NOT NULL,
	frame          INTEGER NOT NULL,
	trajectory_id  INTEGER NOT NULL,
	x              REAL    NOT NULL,
	y              REAL    NOT NULL,
	classification INTEGER NOT NULL,
	PRIMARY KEY (session_id, frame, trajectory_id)
);
CREATE TABLE IF NOT EXISTS lk_sessions (
	session_id  TEXT    PRIMARY KEY,
	exported_at INTEGER NOT NULL,
	rows        INTEGER NOT NULL
);`

// DB stores exported trajectories in SQLite
type DB struct {
	db *sql.DB
}

// Open opens (and creates if needed) SQLite database at path
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open sqlite database '%s'", path)
	}
	// Single writer
	db.SetMaxOpenConns(1)
	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't create schema")
	}
	return &DB{db: db}, nil
}

// Close closes database
func (edb *DB) Close() error {
	return edb.db.Close()
}

// WriteRows replaces every row of the session with given ones in a single transaction
func (edb *DB) WriteRows(ctx context.Context, sessionID uuid.UUID, exportedAt int64, rows []lktrack.ExportRow) error {
	tx, err := edb.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()

	sid := sessionID.String()
	_, err = tx.ExecContext(ctx, `DELETE FROM lk_points WHERE session_id = ?`, sid)
	if err != nil {
		return errors.Wrapf(err, "can't clear session %s", sid)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lk_points (session_id, frame, trajectory_id, x, y, classification) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "can't prepare insert")
	}
	defer stmt.Close()
	for i := range rows {
		row := rows[i]
		_, err = stmt.ExecContext(ctx, sid, row.Frame, row.ID, row.X, row.Y, int64(row.Classification))
		if err != nil {
			return errors.Wrapf(err, "can't insert row (frame %d, id %d)", row.Frame, row.ID)
		}
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO lk_sessions (session_id, exported_at, rows) VALUES (?, ?, ?)`, sid, exportedAt, len(rows))
	if err != nil {
		return errors.Wrapf(err, "can't register session %s", sid)
	}
	return errors.Wrap(tx.Commit(), "can't commit export")
}

// ReadRows returns rows of the session ordered by frame and trajectory id
func (edb *DB) ReadRows(ctx context.Context, sessionID uuid.UUID) ([]lktrack.ExportRow, error) {
	rs, err := edb.db.QueryContext(ctx, `SELECT frame, trajectory_id, x, y, classification FROM lk_points WHERE session_id = ? ORDER BY frame, trajectory_id`, sessionID.String())
	if err != nil {
		return nil, errors.Wrap(err, "can't query rows")
	}
	defer rs.Close()
	rows := make([]lktrack.ExportRow, 0)
	for rs.Next() {
		var row lktrack.ExportRow
		var classification int64
		err = rs.Scan(&row.Frame, &row.ID, &row.X, &row.Y, &classification)
		if err != nil {
			return nil, errors.Wrap(err, "can't scan row")
		}
		row.Classification = uint64(classification)
		rows = append(rows, row)
	}
	return rows, errors.Wrap(rs.Err(), "can't iterate rows")
}

// Sessions returns identifiers of exported sessions
func (edb *DB) Sessions(ctx context.Context) ([]uuid.UUID, error) {
	rs, err := edb.db.QueryContext(ctx, `SELECT session_id FROM lk_sessions ORDER BY exported_at, session_id`)
	if err != nil {
		return nil, errors.Wrap(err, "can't query sessions")
	}
	defer rs.Close()
	ids := make([]uuid.UUID, 0)
	for rs.Next() {
		var raw string
		if err = rs.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "can't scan session")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "bad session id '%s'", raw)
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rs.Err(), "can't iterate sessions")
}
