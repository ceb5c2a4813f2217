// Package history persists conversations in SQLite so a session can be
// resumed and audited across process restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/matehq/mate/internal/provider"
)

const busyTimeoutMillis = 5000

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT    NOT NULL,
		seq        INTEGER NOT NULL,
		role       TEXT    NOT NULL,
		content    TEXT    NOT NULL DEFAULT '',
		hidden     INTEGER NOT NULL DEFAULT 0,
		created_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		PRIMARY KEY (session_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq)`,
}

// Store is a SQLite-backed conversation archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the archive at path. The database
// uses WAL mode, a 5 s busy timeout, and a single connection since SQLite
// serialises writes anyway.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.TODO()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// migrate applies the schema. All DDL uses IF NOT EXISTS, making it
// idempotent.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("history: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("history: read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("history: record schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession records a new session id. Re-creating an existing id is
// a no-op.
func (s *Store) CreateSession(sessionID string) error {
	_, err := s.db.ExecContext(context.TODO(),
		"INSERT OR IGNORE INTO sessions (id) VALUES (?)", sessionID)
	if err != nil {
		return fmt.Errorf("history: create session: %w", err)
	}
	return nil
}

// Append adds one message to the session. Hidden marks engine-generated
// feedback turns that belong in the model's conversation but not in the
// operator-facing transcript.
func (s *Store) Append(sessionID string, msg provider.Message, hidden bool) error {
	h := 0
	if hidden {
		h = 1
	}
	_, err := s.db.ExecContext(context.TODO(), `
		INSERT INTO messages (session_id, seq, role, content, hidden)
		VALUES (?, COALESCE((SELECT MAX(seq) FROM messages WHERE session_id = ?), 0) + 1, ?, ?, ?)`,
		sessionID, sessionID, string(msg.Role), msg.Content, h)
	if err != nil {
		return fmt.Errorf("history: append message: %w", err)
	}
	return nil
}

// Messages returns the session's conversation in chronological order.
// With includeHidden false the engine-generated feedback turns are
// filtered out.
func (s *Store) Messages(sessionID string, includeHidden bool) ([]provider.Message, error) {
	query := "SELECT role, content FROM messages WHERE session_id = ?"
	if !includeHidden {
		query += " AND hidden = 0"
	}
	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(context.TODO(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: load messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []provider.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("history: scan message: %w", err)
		}
		msgs = append(msgs, provider.Message{Role: provider.MessageRole(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: message rows: %w", err)
	}
	return msgs, nil
}

// Sessions returns all known session ids, newest first.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.QueryContext(context.TODO(),
		"SELECT id FROM sessions ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("history: list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("history: scan session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: session rows: %w", err)
	}
	return ids, nil
}

// Len returns the number of stored messages for a session, hidden
// included.
func (s *Store) Len(sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(context.TODO(),
		"SELECT COUNT(*) FROM messages WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("history: count messages: %w", err)
	}
	return count, nil
}

// Purge removes a session and its messages.
func (s *Store) Purge(sessionID string) error {
	ctx := context.TODO()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin purge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("history: purge messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("history: purge session: %w", err)
	}
	return tx.Commit()
}

// Recent returns the n most recent non-hidden messages in chronological
// order.
func (s *Store) Recent(sessionID string, n int) ([]provider.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(context.TODO(), `
		SELECT role, content FROM messages
		WHERE session_id = ? AND hidden = 0
		ORDER BY seq DESC LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []provider.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("history: scan message: %w", err)
		}
		msgs = append(msgs, provider.Message{Role: provider.MessageRole(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent rows: %w", err)
	}
	slices.Reverse(msgs)
	return msgs, nil
}
