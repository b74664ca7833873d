// Package assistant abstracts the hosted LLM assistant service: an
// asynchronous thread + run protocol with tool calling.
package assistant

import (
	"context"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// ToolCall is a structured function request surfaced by a run in the
// requires_action state. Consumed exactly once by submitting a matching
// ToolOutput.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments string
}

// ToolOutput is the serialized result for one tool call. A run with N
// pending tool calls must receive exactly N outputs in a single batch.
type ToolOutput struct {
	CallID string
	Output string
}

// RunState is a single polled observation of a remote run.
type RunState struct {
	RunID     string
	Status    domain.RunStatus
	ToolCalls []ToolCall
	LastError string
}

// ThreadMessage is a message as stored by the remote service.
type ThreadMessage struct {
	ID      string
	Role    string
	Content string
}

// Client defines the assistant service operations the orchestrator needs.
type Client interface {
	// CreateThread creates a remote conversation thread and returns its id.
	CreateThread(ctx context.Context) (string, error)

	// AddUserMessage appends a user message to the thread.
	AddUserMessage(ctx context.Context, threadID, content string) error

	// CreateRun starts a new processing pass over the thread and returns
	// the run id.
	CreateRun(ctx context.Context, threadID string) (string, error)

	// RetrieveRun fetches the current state of a run.
	RetrieveRun(ctx context.Context, threadID, runID string) (*RunState, error)

	// SubmitToolOutputs submits one atomic batch of tool results.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error

	// ListMessagesAfter returns thread messages in ascending order,
	// strictly after the given watermark message id. An empty watermark
	// returns the whole thread.
	ListMessagesAfter(ctx context.Context, threadID, afterID string) ([]ThreadMessage, error)
}
