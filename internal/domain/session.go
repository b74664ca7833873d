package domain

import "time"

// Session owns the identifiers for one ongoing dialogue. The thread id is
// created lazily and immutable once set; at most one run is active at a
// time.
type Session struct {
	SessionID   string    `json:"session_id"`
	ThreadID    string    `json:"thread_id,omitempty"`
	ActiveRunID string    `json:"active_run_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is one entry in a session's append-only message log.
// ExternalID is the remote service's message id; it is set for assistant
// messages once persisted remotely, absent for user messages, and unique
// within a session. The newest external id doubles as the watermark for
// fetching only newer thread messages.
type Message struct {
	MessageID  string    `json:"message_id"`
	SessionID  string    `json:"session_id"`
	RunID      string    `json:"run_id,omitempty"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ExternalID string    `json:"external_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
