package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL DEFAULT '',
			active_run_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			run_id TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_external
			ON messages(session_id, external_id) WHERE external_id != ''`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, thread_id, active_run_id, created_at) VALUES (?, ?, ?, ?)`,
		session.SessionID, session.ThreadID, session.ActiveRunID, session.CreatedAt)
	return err
}

// GetSession retrieves a session by ID. Returns nil when not found.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, thread_id, active_run_id, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.ThreadID, &session.ActiveRunID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetSessionThread records the remote thread id for a session.
// The thread id is write-once.
func (s *SQLiteStore) SetSessionThread(ctx context.Context, sessionID, threadID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET thread_id = ? WHERE session_id = ? AND thread_id = ''`,
		threadID, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("session %s: thread already set or session missing", sessionID)
	}
	return nil
}

// SetActiveRun records the in-flight run for a session.
func (s *SQLiteStore) SetActiveRun(ctx context.Context, sessionID, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET active_run_id = ? WHERE session_id = ?`,
		runID, sessionID)
	return err
}

// ClearActiveRun drops the in-flight run marker for a session.
func (s *SQLiteStore) ClearActiveRun(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET active_run_id = '' WHERE session_id = ?`,
		sessionID)
	return err
}

// CreateMessage appends a message to a session log.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, run_id, role, content, external_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionID, message.RunID, message.Role, message.Content, message.ExternalID, message.CreatedAt)
	return err
}

// GetMessages retrieves messages for a session in append order.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT message_id, session_id, run_id, role, content, external_id, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.RunID, &msg.Role, &msg.Content, &msg.ExternalID, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// HasExternalID reports whether a session already recorded a thread message.
func (s *SQLiteStore) HasExternalID(ctx context.Context, sessionID, externalID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM messages WHERE session_id = ? AND external_id = ?`,
		sessionID, externalID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestExternalID returns the newest recorded thread message id, or ""
// when the session has none.
func (s *SQLiteStore) LatestExternalID(ctx context.Context, sessionID string) (string, error) {
	var externalID string
	err := s.db.QueryRowContext(ctx,
		`SELECT external_id FROM messages WHERE session_id = ? AND external_id != '' ORDER BY rowid DESC LIMIT 1`,
		sessionID).Scan(&externalID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return externalID, nil
}
