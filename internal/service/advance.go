package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flatout-solutions/rental-assistant/internal/assistant"
	"github.com/flatout-solutions/rental-assistant/internal/domain"
	"github.com/flatout-solutions/rental-assistant/internal/policy"
	"github.com/flatout-solutions/rental-assistant/internal/registry"
)

// Advance performs one polling step for the session's active run: it
// observes the remote run state, executes any pending tool calls, and
// harvests new assistant messages on completion. Callers drive the loop
// by invoking Advance until the state is completed, failed, or idle.
func (s *Service) Advance(ctx context.Context, sessionID string) (*domain.AdvanceResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.ActiveRunID == "" {
		return &domain.AdvanceResult{SessionID: sessionID, State: domain.AdvanceStateIdle}, nil
	}

	state, err := s.assistant.RetrieveRun(ctx, session.ThreadID, session.ActiveRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve run %s: %w", session.ActiveRunID, err)
	}

	switch {
	case state.Status == domain.RunStatusRequiresAction:
		outputs := s.dispatchToolCalls(ctx, state.ToolCalls)
		if err := s.assistant.SubmitToolOutputs(ctx, session.ThreadID, state.RunID, outputs); err != nil {
			return nil, fmt.Errorf("failed to submit tool outputs for run %s: %w", state.RunID, err)
		}
		return &domain.AdvanceResult{SessionID: sessionID, State: domain.AdvanceStateActing, RunID: state.RunID}, nil

	case state.Status == domain.RunStatusCompleted:
		newMessages, err := s.harvestMessages(ctx, session, state.RunID)
		if err != nil {
			return nil, err
		}
		if err := s.store.ClearActiveRun(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to clear active run: %w", err)
		}
		return &domain.AdvanceResult{
			SessionID:   sessionID,
			State:       domain.AdvanceStateCompleted,
			RunID:       state.RunID,
			NewMessages: newMessages,
		}, nil

	case state.Status.TerminalFailure():
		if err := s.store.ClearActiveRun(ctx, sessionID); err != nil {
			log.Printf("ERROR: failed to clear active run for %s: %v", sessionID, err)
		}
		termErr := &domain.RunTerminalError{Status: state.Status, Detail: state.LastError}
		return &domain.AdvanceResult{
			SessionID: sessionID,
			State:     domain.AdvanceStateFailed,
			RunID:     state.RunID,
			Error:     termErr.Error(),
		}, nil

	default:
		// queued, in_progress, cancelling
		return &domain.AdvanceResult{SessionID: sessionID, State: domain.AdvanceStateThinking, RunID: state.RunID}, nil
	}
}

// AbandonRun releases the session's active run handle so a new turn can
// start. The remote run is left to expire on its own.
func (s *Service) AbandonRun(ctx context.Context, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	if session.ActiveRunID == "" {
		return nil
	}
	if err := s.store.ClearActiveRun(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear active run: %w", err)
	}
	return nil
}

// dispatchToolCalls executes pending tool calls concurrently and returns
// one output per call, in call order. Operation failures become error
// payloads in the output rather than aborting the batch; the run needs
// exactly one output per call.
func (s *Service) dispatchToolCalls(ctx context.Context, calls []assistant.ToolCall) []assistant.ToolOutput {
	outputs := make([]assistant.ToolOutput, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			outputs[i] = assistant.ToolOutput{
				CallID: call.CallID,
				Output: string(s.executeToolCall(gctx, call)),
			}
			return nil
		})
	}
	g.Wait()
	return outputs
}

func (s *Service) executeToolCall(ctx context.Context, call assistant.ToolCall) json.RawMessage {
	rawArgs := json.RawMessage(call.Arguments)
	if call.Arguments == "" {
		rawArgs = json.RawMessage(`{}`)
	}

	if s.policyEngine != nil {
		var args map[string]any
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			args = map[string]any{}
		}
		decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]any{
			"operation": call.Name,
			"args":      args,
		})
		if err != nil {
			log.Printf("ERROR: policy evaluation failed for %s: %v", call.Name, err)
			return registry.ErrorPayload("policy evaluation failed")
		}
		if decision != policy.DecisionAllow {
			if reason == "" {
				reason = "blocked by policy"
			}
			return registry.ErrorPayload("operation not permitted: " + reason)
		}
	}

	return s.registry.Dispatch(ctx, call.Name, rawArgs)
}

// harvestMessages fetches thread messages newer than the local
// watermark and appends the assistant ones to the session log, skipping
// any already recorded by a previous poll.
func (s *Service) harvestMessages(ctx context.Context, session *domain.Session, runID string) ([]domain.Message, error) {
	watermark, err := s.store.LatestExternalID(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read watermark: %w", err)
	}

	remote, err := s.assistant.ListMessagesAfter(ctx, session.ThreadID, watermark)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread messages: %w", err)
	}

	var harvested []domain.Message
	for _, m := range remote {
		if m.Role != string(domain.RoleAssistant) {
			continue
		}
		seen, err := s.store.HasExternalID(ctx, session.SessionID, m.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check message %s: %w", m.ID, err)
		}
		if seen {
			continue
		}
		msg := domain.Message{
			MessageID:  "msg_" + uuid.New().String()[:8],
			SessionID:  session.SessionID,
			RunID:      runID,
			Role:       domain.RoleAssistant,
			Content:    m.Content,
			ExternalID: m.ID,
			CreatedAt:  time.Now(),
		}
		if err := s.store.CreateMessage(ctx, &msg); err != nil {
			return nil, fmt.Errorf("failed to save assistant message: %w", err)
		}
		harvested = append(harvested, msg)
	}
	return harvested, nil
}
