package assistant

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// OpenAIClient implements Client over the OpenAI Assistants API.
type OpenAIClient struct {
	client      *openai.Client
	assistantID string
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates an assistant client. baseURL is optional and
// supports OpenAI-compatible gateways.
func NewOpenAIClient(apiKey, assistantID, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		assistantID: assistantID,
	}
}

// AssistantID returns the configured assistant id.
func (c *OpenAIClient) AssistantID() string {
	return c.assistantID
}

// CreateThread creates a remote conversation thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.ID, nil
}

// AddUserMessage appends a user message to the thread.
func (c *OpenAIClient) AddUserMessage(ctx context.Context, threadID, content string) error {
	_, err := c.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("failed to add message to thread %s: %w", threadID, err)
	}
	return nil
}

// CreateRun starts a new run on the thread.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID string) (string, error) {
	run, err := c.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: c.assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create run on thread %s: %w", threadID, err)
	}
	return run.ID, nil
}

// RetrieveRun fetches the current state of a run, including any pending
// tool calls when the run requires action.
func (c *OpenAIClient) RetrieveRun(ctx context.Context, threadID, runID string) (*RunState, error) {
	run, err := c.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve run %s: %w", runID, err)
	}

	state := &RunState{
		RunID:  run.ID,
		Status: domain.RunStatus(run.Status),
	}
	if run.LastError != nil {
		state.LastError = run.LastError.Message
	}
	if run.Status == openai.RunStatusRequiresAction &&
		run.RequiredAction != nil &&
		run.RequiredAction.SubmitToolOutputs != nil {
		for _, tc := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			state.ToolCalls = append(state.ToolCalls, ToolCall{
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return state, nil
}

// SubmitToolOutputs submits the batch of tool results for a run.
func (c *OpenAIClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	reqOutputs := make([]openai.ToolOutput, len(outputs))
	for i, out := range outputs {
		reqOutputs[i] = openai.ToolOutput{
			ToolCallID: out.CallID,
			Output:     out.Output,
		}
	}
	_, err := c.client.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
		ToolOutputs: reqOutputs,
	})
	if err != nil {
		return fmt.Errorf("failed to submit tool outputs for run %s: %w", runID, err)
	}
	return nil
}

// ListMessagesAfter returns thread messages ascending, strictly after the
// watermark id.
func (c *OpenAIClient) ListMessagesAfter(ctx context.Context, threadID, afterID string) ([]ThreadMessage, error) {
	order := "asc"
	var after *string
	if afterID != "" {
		after = &afterID
	}
	list, err := c.client.ListMessage(ctx, threadID, nil, &order, after, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for thread %s: %w", threadID, err)
	}

	messages := make([]ThreadMessage, 0, len(list.Messages))
	for _, msg := range list.Messages {
		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Text != nil {
				sb.WriteString(block.Text.Value)
			}
		}
		messages = append(messages, ThreadMessage{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: sb.String(),
		})
	}
	return messages, nil
}
