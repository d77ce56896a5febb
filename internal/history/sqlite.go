package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/factlens/internal/model"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS history (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	query      TEXT NOT NULL,
	date       TEXT NOT NULL,
	verdict    TEXT NOT NULL,
	confidence REAL NOT NULL
)`

// SQLiteStore keeps history in a SQLite database
type SQLiteStore struct {
	conn     *sql.DB
	capacity int
}

// OpenSQLite creates or opens the history database at dbPath
func OpenSQLite(dbPath string, capacity int) (*SQLiteStore, error) {
	if capacity <= 0 {
		capacity = model.HistoryCapacity
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{conn: conn, capacity: capacity}, nil
}

// List returns the entries, newest first
func (s *SQLiteStore) List(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, query, date, verdict, confidence FROM history ORDER BY seq DESC LIMIT ?`,
		s.capacity,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var (
			e       model.HistoryEntry
			date    string
			verdict string
		)
		if err := rows.Scan(&e.ID, &e.Query, &date, &verdict, &e.Confidence); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Date, _ = time.Parse(time.RFC3339Nano, date)
		e.Verdict = model.Verdict(verdict)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Add inserts entry and trims the table to capacity in one transaction
func (s *SQLiteStore) Add(ctx context.Context, entry model.HistoryEntry) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (id, query, date, verdict, confidence) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Query, entry.Date.UTC().Format(time.RFC3339Nano), string(entry.Verdict), entry.Confidence,
	); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`,
		s.capacity,
	); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit()
}

// Clear removes every entry
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM history`)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
