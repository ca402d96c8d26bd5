// Package manifest records every file the batch drivers write into a
// SQLite database, so a generated dataset can be traced back to its
// sources and seed.
package manifest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one saved output.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Op        string
	ImagePath string
	LabelPath string
	// Sources are the input files the output was built from.
	Sources []string
	Seed    uint64
	// Shapes is the number of annotation shapes written.
	Shapes int
}

// DB is an open manifest.
type DB struct {
	*sql.DB
}

// Open opens or creates the manifest at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS outputs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			op TEXT NOT NULL,
			image_path TEXT,
			label_path TEXT,
			sources TEXT,
			seed INTEGER,
			shapes INTEGER
		);
		CREATE INDEX IF NOT EXISTS outputs_op ON outputs (op);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create manifest schema: %w", err)
	}

	return &DB{db}, nil
}

// Record inserts e. A missing ID or timestamp is filled in.
func (db *DB) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	sources, err := json.Marshal(e.Sources)
	if err != nil {
		return err
	}

	_, err = db.Exec(
		"INSERT INTO outputs (id, created_at, op, image_path, label_path, sources, seed, shapes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Op, e.ImagePath, e.LabelPath, string(sources), int64(e.Seed), e.Shapes,
	)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", e.ImagePath, err)
	}
	return nil
}

// List returns every entry, oldest first.
func (db *DB) List() ([]Entry, error) {
	rows, err := db.Query("SELECT id, created_at, op, image_path, label_path, sources, seed, shapes FROM outputs ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			sources string
			seed    int64
		)
		if err := rows.Scan(&e.ID, &created, &e.Op, &e.ImagePath, &e.LabelPath, &sources, &seed, &e.Shapes); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(sources), &e.Sources); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		e.Seed = uint64(seed)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
