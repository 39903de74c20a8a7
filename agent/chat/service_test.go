package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/taskwire/taskwire/agent/contract"
	storex "github.com/taskwire/taskwire/agent/store"
)

type dispatchRecord struct {
	tool string
	args map[string]any
}

type fakeDispatcher struct {
	failOn map[string]error
	calls  []dispatchRecord
}

func (f *fakeDispatcher) Invoke(_ context.Context, name string, args map[string]any) (map[string]any, error) {
	copied := make(map[string]any, len(args))
	for k, v := range args {
		copied[k] = v
	}
	f.calls = append(f.calls, dispatchRecord{tool: name, args: copied})
	if err, ok := f.failOn[name]; ok {
		return nil, err
	}
	return map[string]any{"status": "ok"}, nil
}

type fakeEngine struct {
	result contractx.EngineResult
	err    error
	calls  int
}

func (f *fakeEngine) Run(_ context.Context, _ string, _ []contractx.Message) (contractx.EngineResult, error) {
	f.calls++
	if f.err != nil {
		return contractx.EngineResult{}, f.err
	}
	return f.result, nil
}

func newTestStore(t *testing.T, owners ...string) *storex.MemoryStore {
	t.Helper()

	store := storex.NewMemoryStore()
	for _, owner := range owners {
		if err := store.CreateUser(context.Background(), &contractx.User{ID: owner}); err != nil {
			t.Fatalf("CreateUser(%q) error = %v", owner, err)
		}
	}
	return store
}

func TestSendInvalidInput(t *testing.T) {
	t.Parallel()

	o, err := New(newTestStore(t, "alice"), &fakeDispatcher{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Send(context.Background(), "  ", contractx.ChatRequest{Message: "hello"})
	if !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", err)
	}
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("blank owner must be a validation failure, got %v", err)
	}

	_, err = o.Send(context.Background(), "alice", contractx.ChatRequest{Message: "   "})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("blank message must be a validation failure, got %v", err)
	}
}

func TestSendFallsBackWhenNoEngineConfigured(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice")
	dispatcher := &fakeDispatcher{}
	o, err := New(store, dispatcher)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := o.Send(context.Background(), "alice", contractx.ChatRequest{Message: "add buy milk"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.Contains(resp.Reply, "buy milk") {
		t.Fatalf("expected extractor reply, got %q", resp.Reply)
	}
	if len(dispatcher.calls) != 1 || dispatcher.calls[0].tool != "add_task" {
		t.Fatalf("unexpected dispatches: %+v", dispatcher.calls)
	}
	if dispatcher.calls[0].args["user_id"] != "alice" {
		t.Fatalf("owner not injected: %v", dispatcher.calls[0].args)
	}
	if dispatcher.calls[0].args["title"] != "buy milk" {
		t.Fatalf("title not forwarded: %v", dispatcher.calls[0].args)
	}
}

func TestSendFallsBackWhenEngineFails(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice")
	dispatcher := &fakeDispatcher{}
	engine := &fakeEngine{err: errors.New("upstream 503")}
	o, err := New(store, dispatcher, WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := o.Send(context.Background(), "alice", contractx.ChatRequest{Message: "complete task 7"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("expected one engine attempt, got %d", engine.calls)
	}
	if !strings.Contains(resp.Reply, "Task 7") {
		t.Fatalf("expected extractor reply, got %q", resp.Reply)
	}
	if len(dispatcher.calls) != 1 || dispatcher.calls[0].tool != "complete_task" {
		t.Fatalf("unexpected dispatches: %+v", dispatcher.calls)
	}
}

func TestSendUsesEngineResult(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice")
	dispatcher := &fakeDispatcher{}
	engine := &fakeEngine{
		result: contractx.EngineResult{
			Reply: "Adding that now.",
			ToolCalls: []contractx.ToolCall{
				{Tool: "add_task", Params: map[string]any{"title": "walk dog", "user_id": "mallory"}},
			},
		},
	}
	o, err := New(store, dispatcher, WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := o.Send(context.Background(), "alice", contractx.ChatRequest{Message: "please add walk dog"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.Reply != "Adding that now." {
		t.Fatalf("unexpected reply: %q", resp.Reply)
	}
	// The engine never names the caller; the authenticated owner wins.
	if dispatcher.calls[0].args["user_id"] != "alice" {
		t.Fatalf("owner not enforced: %v", dispatcher.calls[0].args)
	}
}

func TestSendToolFailureDoesNotBlockLaterCalls(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice")
	dispatcher := &fakeDispatcher{
		failOn: map[string]error{"complete_task": errors.New("task not found: id=9")},
	}
	engine := &fakeEngine{
		result: contractx.EngineResult{
			Reply: "Done.",
			ToolCalls: []contractx.ToolCall{
				{Tool: "complete_task", Params: map[string]any{"task_id": int64(9)}},
				{Tool: "list_tasks", Params: map[string]any{"status": "all"}},
			},
		},
	}
	o, err := New(store, dispatcher, WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := o.Send(context.Background(), "alice", contractx.ChatRequest{Message: "finish 9 and show all"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(dispatcher.calls) != 2 {
		t.Fatalf("expected both calls attempted, got %d", len(dispatcher.calls))
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("expected two outcomes, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Error == "" {
		t.Fatal("first outcome must record the failure")
	}
	if resp.ToolCalls[1].Error != "" || resp.ToolCalls[1].Result == nil {
		t.Fatalf("second outcome must succeed: %+v", resp.ToolCalls[1])
	}
}

func TestSendPersistsUserMessageBeforeReply(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice")
	o, err := New(store, &fakeDispatcher{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := o.Send(context.Background(), "alice", contractx.ChatRequest{Message: "hello there"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.ConversationID == 0 {
		t.Fatal("expected a fresh conversation id")
	}

	history, err := store.ListMessages(context.Background(), resp.ConversationID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user plus assistant message, got %d", len(history))
	}
	if history[0].Role != contractx.RoleUser || history[0].Content != "hello there" {
		t.Fatalf("first message must be the user's: %+v", history[0])
	}
	if history[1].Role != contractx.RoleAssistant || history[1].Content != resp.Reply {
		t.Fatalf("second message must be the reply: %+v", history[1])
	}
}

func TestSendContinuesExistingConversation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice")
	o, err := New(store, &fakeDispatcher{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	first, err := o.Send(ctx, "alice", contractx.ChatRequest{Message: "hello there"})
	if err != nil {
		t.Fatalf("first Send() error = %v", err)
	}

	second, err := o.Send(ctx, "alice", contractx.ChatRequest{
		ConversationID: &first.ConversationID,
		Message:        "add buy milk",
	})
	if err != nil {
		t.Fatalf("second Send() error = %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("conversation changed: %d != %d", second.ConversationID, first.ConversationID)
	}

	history, err := store.ListMessages(ctx, first.ConversationID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected four messages across two turns, got %d", len(history))
	}
}

func TestSendRejectsForeignConversation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "alice", "bob")
	o, err := New(store, &fakeDispatcher{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "bob")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	_, err = o.Send(ctx, "alice", contractx.ChatRequest{ConversationID: &conv.ID, Message: "hi"})
	if !errors.Is(err, contractx.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}

	history, err := store.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("no message may leak into a foreign conversation, got %d", len(history))
	}
}

func TestSendUnknownOwnerFailsClosed(t *testing.T) {
	t.Parallel()

	o, err := New(newTestStore(t), &fakeDispatcher{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Send(context.Background(), "ghost", contractx.ChatRequest{Message: "hello"})
	if !errors.Is(err, contractx.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
