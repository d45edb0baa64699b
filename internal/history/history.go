// Package history records an interactive session's transcript — the
// source of each processed line and its outcome — in a SQLite
// database. Only text goes in; compiled artifacts are never persisted.
package history

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcript (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	at      TIMESTAMP NOT NULL,
	source  TEXT NOT NULL,
	value   REAL,
	err     TEXT NOT NULL DEFAULT ''
);`

// Entry is one recorded line. Value is null for definitions,
// declarations, and failed units.
type Entry struct {
	ID     int64
	At     time.Time
	Source string
	Value  sql.NullFloat64
	Err    string
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the transcript database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Append records one processed line. value is nil when the line
// produced no value (definitions, declarations, failures).
func (s *Store) Append(ctx context.Context, source string, value *float64, errMsg string) error {
	v := sql.NullFloat64{}
	if value != nil {
		v = sql.NullFloat64{Float64: *value, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcript (at, source, value, err) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), source, v, errMsg,
	)
	return err
}

// Recent returns the latest limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, source, value, err FROM transcript ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.At, &e.Source, &e.Value, &e.Err); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
