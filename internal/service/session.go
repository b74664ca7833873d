package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// welcomeMessage seeds every new session so the UI has an opening turn
// before the first run.
const welcomeMessage = "Hi! Welcome to Prevail Equipments. I can help you browse our rental equipment, " +
	"check availability and pricing, and book a reservation. What are you looking for?"

// CreateSession opens a new chat session. The remote thread is created
// lazily on the first user message.
func (s *Service) CreateSession(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		SessionID: "sess_" + uuid.New().String()[:8],
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	welcome := &domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: session.SessionID,
		Role:      domain.RoleAssistant,
		Content:   welcomeMessage,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMessage(ctx, welcome); err != nil {
		log.Printf("ERROR: failed to seed welcome message for %s: %v", session.SessionID, err)
	}

	return session, nil
}

// SendMessage records a user turn and starts a run over the session's
// thread. Returns domain.ErrRunAlreadyActive while a previous run is
// still in flight, and domain.ErrSessionNotFound for unknown sessions.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string) (*domain.SendMessageResponse, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.ActiveRunID != "" {
		return nil, domain.ErrRunAlreadyActive
	}

	threadID, err := s.ensureThread(ctx, session)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMsg := &domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	if err := s.assistant.AddUserMessage(ctx, threadID, content); err != nil {
		return nil, fmt.Errorf("failed to append message to thread: %w", err)
	}

	runID, err := s.assistant.CreateRun(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	if err := s.store.SetActiveRun(ctx, sessionID, runID); err != nil {
		return nil, fmt.Errorf("failed to record active run: %w", err)
	}

	return &domain.SendMessageResponse{SessionID: sessionID, RunID: runID}, nil
}

// GetSession looks up a session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ListMessages returns the session's message log in append order.
func (s *Service) ListMessages(ctx context.Context, sessionID string, limit int) (*domain.MessageListResponse, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	messages, err := s.store.GetMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return &domain.MessageListResponse{SessionID: sessionID, Messages: messages}, nil
}

// ensureThread returns the session's remote thread id, creating the
// thread on first use.
func (s *Service) ensureThread(ctx context.Context, session *domain.Session) (string, error) {
	if session.ThreadID != "" {
		return session.ThreadID, nil
	}
	threadID, err := s.assistant.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	if err := s.store.SetSessionThread(ctx, session.SessionID, threadID); err != nil {
		return "", fmt.Errorf("failed to record thread: %w", err)
	}
	session.ThreadID = threadID
	return threadID, nil
}
