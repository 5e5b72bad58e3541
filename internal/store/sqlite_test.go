package store

import (
	"context"
	"testing"

	"github.com/maitred-ai/maitred/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestCreateSessionGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := s.CreateSession(ctx, "", "")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if id == "" {
			t.Fatal("expected generated id")
		}
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
	}
}

func TestCreateSessionWithExplicitIDUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "first", "fixed-id")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if id != "fixed-id" {
		t.Fatalf("expected supplied id back, got %s", id)
	}

	// Same id again must overwrite, not fail.
	if _, err := s.CreateSession(ctx, "second", "fixed-id"); err != nil {
		t.Fatalf("upsert CreateSession failed: %v", err)
	}

	sessions, err := s.ListSessions(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "second" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestSessionExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exists, err := s.SessionExists(ctx, "nope")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing session")
	}

	id, err := s.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	exists, err = s.SessionExists(ctx, id)
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected session to exist")
	}
}

func TestAppendMessageBootstrapsSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.AppendMessage(ctx, "ghost", domain.RoleUser, "hello"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	exists, err := s.SessionExists(ctx, "ghost")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected append to create the session")
	}

	messages, err := s.GetMessages(ctx, "ghost", 10)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
}

func TestAppendMessageRejectsInvalidRole(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.AppendMessage(ctx, "s1", domain.Role("operator"), "x"); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestGetMessagesWindowAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	contents := []string{"one", "two", "three", "four", "five"}
	for _, c := range contents {
		if err := s.AppendMessage(ctx, id, domain.RoleUser, c); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	// The window is the newest N, returned oldest-first.
	messages, err := s.GetMessages(ctx, id, 3)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, want := range []string{"three", "four", "five"} {
		if messages[i].Content != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, messages[i].Content)
		}
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Fatalf("messages out of chronological order: %+v", messages)
		}
	}

	// Asking for more than exists returns everything.
	all, err := s.GetMessages(ctx, id, 100)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(all) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(all))
	}
}

func TestGetMessagesEmptySession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	messages, err := s.GetMessages(ctx, id, 10)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %+v", messages)
	}
}

func TestUpdateSessionTitleIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := s.UpdateSessionTitleIfEmpty(ctx, id, "Alpha"); err != nil {
		t.Fatalf("UpdateSessionTitleIfEmpty failed: %v", err)
	}
	// Second setter must be a no-op once a title stuck.
	if err := s.UpdateSessionTitleIfEmpty(ctx, id, "Beta"); err != nil {
		t.Fatalf("UpdateSessionTitleIfEmpty failed: %v", err)
	}

	sessions, err := s.ListSessions(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "Alpha" {
		t.Fatalf("expected title Alpha, got %+v", sessions)
	}
}

func TestListSessionsOrderedByActivity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.CreateSession(ctx, "first", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	second, err := s.CreateSession(ctx, "second", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Touch the first session so it becomes the most recently updated.
	if err := s.AppendMessage(ctx, first, domain.RoleUser, "ping"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	sessions, err := s.ListSessions(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != first || sessions[1].ID != second {
		t.Fatalf("unexpected order: %+v", sessions)
	}

	paged, err := s.ListSessions(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(paged) != 1 || paged[0].ID != second {
		t.Fatalf("unexpected page: %+v", paged)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Deleting a session that never existed is a no-op.
	if err := s.DeleteSession(ctx, "never-created"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	id, err := s.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := s.AppendMessage(ctx, id, domain.RoleUser, "hello"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	if err := s.DeleteSession(ctx, id); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if err := s.DeleteSession(ctx, id); err != nil {
		t.Fatalf("second DeleteSession failed: %v", err)
	}

	exists, err := s.SessionExists(ctx, id)
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if exists {
		t.Fatal("expected session gone after delete")
	}

	messages, err := s.GetMessages(ctx, id, 10)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected messages gone, got %+v", messages)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}
