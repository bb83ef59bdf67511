package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	rev        INTEGER NOT NULL DEFAULT 1,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore persists documents in a single SQLite table. Apply runs the
// read-modify-write inside one database transaction.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at dsn and ensures the schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}
	// modernc.org/sqlite serialises writers itself; a single connection
	// avoids SQLITE_BUSY on concurrent transactions.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate sqlite: %v", ErrUnavailable, err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Get returns the document body stored under id.
func (s *SQLiteStore) Get(ctx context.Context, id string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, id, err)
	}
	return []byte(body), nil
}

// Create inserts a new document, refusing to overwrite an existing one.
func (s *SQLiteStore) Create(ctx context.Context, id string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, rev, body, updated_at) VALUES (?, 1, ?, ?)`,
		id, string(body), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrExists
		}
		return fmt.Errorf("%w: create %s: %v", ErrUnavailable, id, err)
	}
	return nil
}

// Apply runs mutate inside a transaction and commits the replacement body.
func (s *SQLiteStore) Apply(ctx context.Context, id string, mutate Mutate) ([]byte, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var body string
	err = tx.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, id, err)
	}

	next, err := mutate([]byte(body))
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET rev = rev + 1, body = ?, updated_at = ? WHERE id = ?`,
		string(next), s.now().UTC().Format(time.RFC3339), id); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", ErrUnavailable, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit %s: %v", ErrUnavailable, id, err)
	}
	return next, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
