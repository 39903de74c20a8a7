package store

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

func TestMemoryStoreHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	turns := []struct {
		role    contractx.Role
		content string
	}{
		{contractx.RoleUser, "add buy milk"},
		{contractx.RoleAssistant, "Task 'buy milk' has been created for you."},
		{contractx.RoleUser, "list my tasks"},
	}
	for _, turn := range turns {
		if _, err := s.AppendMessage(ctx, conv.ID, "alice", turn.role, turn.content); err != nil {
			t.Fatalf("AppendMessage(%q) error = %v", turn.content, err)
		}
	}

	history, err := s.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(history) != len(turns) {
		t.Fatalf("expected %d messages, got %d", len(turns), len(history))
	}
	for i, turn := range turns {
		if history[i].Role != turn.role {
			t.Fatalf("message %d: expected role %s, got %s", i, turn.role, history[i].Role)
		}
		if history[i].Content != turn.content {
			t.Fatalf("message %d: expected content %q, got %q", i, turn.content, history[i].Content)
		}
	}
}

func TestMemoryStoreTaskLifecycle(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s := NewMemoryStore(WithMemoryClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	ctx := context.Background()

	first := &contractx.Task{UserID: "alice", Title: "first"}
	second := &contractx.Task{UserID: "alice", Title: "second"}
	foreign := &contractx.Task{UserID: "bob", Title: "not yours"}
	for _, task := range []*contractx.Task{first, second, foreign} {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", task.Title, err)
		}
	}

	tasks, err := s.ListTasks(ctx, "alice", contractx.StatusAll)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks for alice, got %d", len(tasks))
	}
	if tasks[0].Title != "first" || tasks[1].Title != "second" {
		t.Fatalf("tasks out of creation order: %q, %q", tasks[0].Title, tasks[1].Title)
	}

	first.Completed = true
	if err := s.UpdateTask(ctx, first); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}

	pending, err := s.ListTasks(ctx, "alice", contractx.StatusPending)
	if err != nil {
		t.Fatalf("ListTasks(pending) error = %v", err)
	}
	if len(pending) != 1 || pending[0].Title != "second" {
		t.Fatalf("unexpected pending tasks: %v", pending)
	}

	completed, err := s.ListTasks(ctx, "alice", contractx.StatusCompleted)
	if err != nil {
		t.Fatalf("ListTasks(completed) error = %v", err)
	}
	if len(completed) != 1 || completed[0].Title != "first" {
		t.Fatalf("unexpected completed tasks: %v", completed)
	}

	if err := s.DeleteTask(ctx, second.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if err := s.DeleteTask(ctx, second.ID); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestMemoryStoreNotFoundSentinels(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetUser(ctx, "nobody"); !errors.Is(err, contractx.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.GetTask(ctx, 99); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := s.GetConversation(ctx, 99); !errors.Is(err, contractx.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if _, err := s.AppendMessage(ctx, 99, "alice", contractx.RoleUser, "hi"); !errors.Is(err, contractx.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if err := s.UpdateTask(ctx, &contractx.Task{ID: 99}); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestMemoryStoreCreateUserAssignsID(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	user := &contractx.User{Email: "alice@example.com", Name: "Alice"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated user id")
	}

	loaded, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if loaded.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %q", loaded.Email)
	}
}
