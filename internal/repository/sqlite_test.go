package repository

import (
	"context"
	"testing"
	"time"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session := &domain.Session{SessionID: "s1", CreatedAt: time.Now()}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.ThreadID != "" || got.ActiveRunID != "" {
		t.Fatalf("unexpected session: %+v", got)
	}

	missing, err := store.GetSession(ctx, "nope")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown session, got %+v", missing)
	}

	if err := store.SetSessionThread(ctx, "s1", "thread_abc"); err != nil {
		t.Fatalf("SetSessionThread failed: %v", err)
	}
	if err := store.SetSessionThread(ctx, "s1", "thread_xyz"); err == nil {
		t.Fatal("expected error overwriting thread id")
	}

	if err := store.SetActiveRun(ctx, "s1", "run_1"); err != nil {
		t.Fatalf("SetActiveRun failed: %v", err)
	}
	got, err = store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ThreadID != "thread_abc" || got.ActiveRunID != "run_1" {
		t.Fatalf("unexpected session after updates: %+v", got)
	}

	if err := store.ClearActiveRun(ctx, "s1"); err != nil {
		t.Fatalf("ClearActiveRun failed: %v", err)
	}
	got, err = store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ActiveRunID != "" {
		t.Fatalf("expected cleared run, got %q", got.ActiveRunID)
	}
}

func TestSQLiteStoreMessages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.CreateSession(ctx, &domain.Session{SessionID: "s1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	base := time.Now()
	msgs := []domain.Message{
		{MessageID: "m1", SessionID: "s1", Role: domain.RoleAssistant, Content: "welcome", CreatedAt: base},
		{MessageID: "m2", SessionID: "s1", RunID: "run_1", Role: domain.RoleUser, Content: "hi", CreatedAt: base.Add(time.Second)},
		{MessageID: "m3", SessionID: "s1", RunID: "run_1", Role: domain.RoleAssistant, Content: "hello there", ExternalID: "ext_1", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range msgs {
		if err := store.CreateMessage(ctx, &msgs[i]); err != nil {
			t.Fatalf("CreateMessage %s failed: %v", msgs[i].MessageID, err)
		}
	}

	got, err := store.GetMessages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].Content != "welcome" || got[2].ExternalID != "ext_1" {
		t.Fatalf("unexpected order: %+v", got)
	}

	limited, err := store.GetMessages(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 messages with limit, got %d", len(limited))
	}
}

func TestSQLiteStoreExternalIDDedupe(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.CreateSession(ctx, &domain.Session{SessionID: "s1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	first := &domain.Message{MessageID: "m1", SessionID: "s1", Role: domain.RoleAssistant, Content: "a", ExternalID: "ext_1", CreatedAt: time.Now()}
	if err := store.CreateMessage(ctx, first); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	dup := &domain.Message{MessageID: "m2", SessionID: "s1", Role: domain.RoleAssistant, Content: "a again", ExternalID: "ext_1", CreatedAt: time.Now()}
	if err := store.CreateMessage(ctx, dup); err == nil {
		t.Fatal("expected unique constraint error for duplicate external id")
	}

	// Empty external ids are exempt from the uniqueness rule.
	for _, id := range []string{"m3", "m4"} {
		msg := &domain.Message{MessageID: id, SessionID: "s1", Role: domain.RoleUser, Content: "x", CreatedAt: time.Now()}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage %s failed: %v", id, err)
		}
	}

	has, err := store.HasExternalID(ctx, "s1", "ext_1")
	if err != nil {
		t.Fatalf("HasExternalID failed: %v", err)
	}
	if !has {
		t.Fatal("expected ext_1 to be recorded")
	}
	has, err = store.HasExternalID(ctx, "s1", "ext_2")
	if err != nil {
		t.Fatalf("HasExternalID failed: %v", err)
	}
	if has {
		t.Fatal("did not expect ext_2 to be recorded")
	}
}

func TestSQLiteStoreLatestExternalID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.CreateSession(ctx, &domain.Session{SessionID: "s1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	watermark, err := store.LatestExternalID(ctx, "s1")
	if err != nil {
		t.Fatalf("LatestExternalID failed: %v", err)
	}
	if watermark != "" {
		t.Fatalf("expected empty watermark, got %q", watermark)
	}

	now := time.Now()
	seq := []domain.Message{
		{MessageID: "m1", SessionID: "s1", Role: domain.RoleAssistant, Content: "a", ExternalID: "ext_1", CreatedAt: now},
		{MessageID: "m2", SessionID: "s1", Role: domain.RoleUser, Content: "b", CreatedAt: now},
		{MessageID: "m3", SessionID: "s1", Role: domain.RoleAssistant, Content: "c", ExternalID: "ext_2", CreatedAt: now},
	}
	for i := range seq {
		if err := store.CreateMessage(ctx, &seq[i]); err != nil {
			t.Fatalf("CreateMessage %s failed: %v", seq[i].MessageID, err)
		}
	}

	watermark, err = store.LatestExternalID(ctx, "s1")
	if err != nil {
		t.Fatalf("LatestExternalID failed: %v", err)
	}
	if watermark != "ext_2" {
		t.Fatalf("expected ext_2, got %q", watermark)
	}
}
