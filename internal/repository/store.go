// Package repository persists sessions and their message logs.
package repository

import (
	"context"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// Store is the session/message persistence interface.
type Store interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession returns a session, or nil when the id is unknown.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// SetSessionThread records the remote thread id. A thread id is
	// immutable once set; overwriting is an error.
	SetSessionThread(ctx context.Context, sessionID, threadID string) error

	// SetActiveRun records the in-flight run for a session.
	SetActiveRun(ctx context.Context, sessionID, runID string) error

	// ClearActiveRun drops the in-flight run marker.
	ClearActiveRun(ctx context.Context, sessionID string) error

	// CreateMessage appends a message to a session log. A duplicate
	// non-empty external id within the session is an error.
	CreateMessage(ctx context.Context, message *domain.Message) error

	// GetMessages returns a session's messages in append order.
	GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// HasExternalID reports whether the session log already contains a
	// message with the given external id.
	HasExternalID(ctx context.Context, sessionID, externalID string) (bool, error)

	// LatestExternalID returns the most recently appended non-empty
	// external id, the watermark for fetching newer thread messages.
	// Empty when no remote message has been recorded yet.
	LatestExternalID(ctx context.Context, sessionID string) (string, error)

	// Close releases the store.
	Close() error
}
