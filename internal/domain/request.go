package domain

// CreateSessionResponse is returned after opening a new chat session.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// SendMessageRequest carries one user turn.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse acknowledges an accepted turn.
type SendMessageResponse struct {
	SessionID string `json:"session_id"`
	RunID     string `json:"run_id"`
}

// AdvanceResult is the outcome of one advance step. NewMessages is only
// populated when the step observed run completion and harvested fresh
// assistant messages.
type AdvanceResult struct {
	SessionID   string       `json:"session_id"`
	State       AdvanceState `json:"state"`
	RunID       string       `json:"run_id,omitempty"`
	NewMessages []Message    `json:"new_messages,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// MessageListResponse is a read-only snapshot of a session's message log.
type MessageListResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}
