// Package domain defines the core domain models for the rental assistant.
package domain

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RunStatus mirrors the remote assistant service's run states. Run state is
// always fetched by polling; it is never cached beyond a single check.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether the run has reached a final state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// TerminalFailure reports whether the run ended abnormally.
func (s RunStatus) TerminalFailure() bool {
	switch s {
	case RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// AdvanceState is the caller-visible outcome of one advance step.
type AdvanceState string

const (
	AdvanceStateIdle      AdvanceState = "idle"
	AdvanceStateThinking  AdvanceState = "thinking"
	AdvanceStateActing    AdvanceState = "acting"
	AdvanceStateCompleted AdvanceState = "completed"
	AdvanceStateFailed    AdvanceState = "failed"
)
