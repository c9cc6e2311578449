// Package history records normalize/check/verify runs in an ephemeral SQLite
// database so past scans can be reviewed. The core engine never touches this;
// persistence is strictly the CLI's concern.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the scan-history SQLite database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			operation TEXT NOT NULL,
			run_at INTEGER NOT NULL,
			change_count INTEGER NOT NULL DEFAULT 0,
			duplicate_count INTEGER NOT NULL DEFAULT 0,
			orphan_count INTEGER NOT NULL DEFAULT 0,
			missing_count INTEGER NOT NULL DEFAULT 0,
			mismatch_count INTEGER NOT NULL DEFAULT 0,
			report_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_scans_path ON scans(path);
	`
	_, err := db.Exec(schema)
	return err
}

// Entry is one recorded run.
type Entry struct {
	ID         int64     `json:"id"`
	Path       string    `json:"path"`
	Operation  string    `json:"operation"`
	RunAt      time.Time `json:"run_at"`
	Changes    int       `json:"changes"`
	Duplicates int       `json:"duplicates"`
	Orphans    int       `json:"orphans"`
	Missing    int       `json:"missing"`
	Mismatches int       `json:"mismatches"`
	ReportJSON string    `json:"-"`
}

// Record inserts a run and returns its row ID. A zero RunAt is stamped now.
func (d *DB) Record(e Entry) (int64, error) {
	if e.RunAt.IsZero() {
		e.RunAt = time.Now()
	}

	res, err := d.db.Exec(`
		INSERT INTO scans (path, operation, run_at, change_count,
			duplicate_count, orphan_count, missing_count, mismatch_count, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Path, e.Operation, e.RunAt.Unix(),
		e.Changes, e.Duplicates, e.Orphans, e.Missing, e.Mismatches, e.ReportJSON)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

const selectScanFields = `id, path, operation, run_at, change_count,
	duplicate_count, orphan_count, missing_count, mismatch_count,
	COALESCE(report_json, '')`

// Recent returns the most recent runs, newest first.
func (d *DB) Recent(limit int) ([]Entry, error) {
	rows, err := d.db.Query(
		"SELECT "+selectScanFields+" FROM scans ORDER BY run_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ForPath returns the most recent runs for one document path, newest first.
func (d *DB) ForPath(path string, limit int) ([]Entry, error) {
	rows, err := d.db.Query(
		"SELECT "+selectScanFields+" FROM scans WHERE path = ? ORDER BY run_at DESC, id DESC LIMIT ?",
		path, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var runAt int64
		if err := rows.Scan(&e.ID, &e.Path, &e.Operation, &runAt,
			&e.Changes, &e.Duplicates, &e.Orphans, &e.Missing, &e.Mismatches,
			&e.ReportJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.RunAt = time.Unix(runAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
