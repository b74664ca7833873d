package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound indicates an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRunAlreadyActive is a caller-misuse guard: a new turn may not
	// start while another run is in flight for the same session.
	ErrRunAlreadyActive = errors.New("a run is already active for this session")

	// ErrUnknownOperation indicates a tool call named an operation that is
	// not registered.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMalformedArguments indicates tool call arguments that could not be
	// parsed or failed schema validation.
	ErrMalformedArguments = errors.New("malformed arguments")

	// ErrBackendUnavailable indicates a backend request that failed after
	// exhausting the retry budget.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// RunTerminalError reports a run that ended abnormally
// (failed, cancelled or expired). It is surfaced to the caller as a
// user-visible error and is not retried; the user must re-send to start
// a new turn.
type RunTerminalError struct {
	Status RunStatus
	Detail string
}

func (e *RunTerminalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("run %s", e.Status)
	}
	return fmt.Sprintf("run %s: %s", e.Status, e.Detail)
}
