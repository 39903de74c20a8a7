package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/taskwire/taskwire/agent/contract"
	storex "github.com/taskwire/taskwire/agent/store"
)

func newTestInvoker(t *testing.T) (*Invoker, *storex.MemoryStore) {
	t.Helper()

	store := storex.NewMemoryStore()
	reg, err := NewCatalog(store)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return NewInvoker(reg), store
}

func seedUser(t *testing.T, store *storex.MemoryStore, id string) {
	t.Helper()

	if err := store.CreateUser(context.Background(), &contractx.User{ID: id}); err != nil {
		t.Fatalf("CreateUser(%q) error = %v", id, err)
	}
}

func TestCatalogListsToolsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)

	want := []string{ToolAddTask, ToolListTasks, ToolCompleteTask, ToolDeleteTask, ToolUpdateTask}
	defs := inv.Registry().List()
	if len(defs) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(defs))
	}
	seen := map[string]int{}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Fatalf("tool %d: expected %s, got %s", i, want[i], def.Name)
		}
		seen[def.Name]++
	}
	for name, count := range seen {
		if count != 1 {
			t.Fatalf("tool %s listed %d times", name, count)
		}
	}

	descriptors := inv.Registry().Descriptors()
	for i, desc := range descriptors {
		if desc["name"] != want[i] {
			t.Fatalf("descriptor %d: expected %s, got %v", i, want[i], desc["name"])
		}
		if desc["description"] == "" {
			t.Fatalf("descriptor %s has empty description", want[i])
		}
		if desc["inputSchema"] == nil {
			t.Fatalf("descriptor %s has no input schema", want[i])
		}
	}
}

func TestDescriptorsAreDetachedCopies(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)

	descriptors := inv.Registry().Descriptors()
	schema := descriptors[0]["inputSchema"].(map[string]any)
	props := schema["properties"].(map[string]any)
	delete(props, "title")
	schema["required"] = []string{}
	descriptors[0]["name"] = "tampered"

	def, ok := inv.Registry().Get(ToolAddTask)
	if !ok {
		t.Fatalf("tool %s disappeared", ToolAddTask)
	}
	registered := def.InputSchema["properties"].(map[string]any)
	if _, ok := registered["title"]; !ok {
		t.Fatal("registered schema mutated through descriptor copy")
	}

	fresh := inv.Registry().Descriptors()
	if fresh[0]["name"] != ToolAddTask {
		t.Fatalf("descriptor name mutated: %v", fresh[0]["name"])
	}
	freshProps := fresh[0]["inputSchema"].(map[string]any)["properties"].(map[string]any)
	if _, ok := freshProps["title"]; !ok {
		t.Fatal("fresh descriptors reflect caller mutation")
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)

	_, err := inv.Invoke(context.Background(), "no_such_tool", map[string]any{"anything": true})
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestInvokeRejectsBadArgs(t *testing.T) {
	t.Parallel()

	inv, store := newTestInvoker(t)
	seedUser(t, store, "alice")
	ctx := context.Background()

	cases := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"missing required", ToolAddTask, map[string]any{"user_id": "alice"}},
		{"unexpected param", ToolAddTask, map[string]any{"user_id": "alice", "title": "x", "priority": 1}},
		{"wrong type", ToolCompleteTask, map[string]any{"user_id": "alice", "task_id": "seven"}},
		{"bad enum", ToolListTasks, map[string]any{"user_id": "alice", "status": "archived"}},
		{"fractional id", ToolDeleteTask, map[string]any{"user_id": "alice", "task_id": 1.5}},
	}
	for _, tc := range cases {
		if _, err := inv.Invoke(ctx, tc.tool, tc.args); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestInvokeUnknownOwner(t *testing.T) {
	t.Parallel()

	inv, _ := newTestInvoker(t)

	_, err := inv.Invoke(context.Background(), ToolAddTask, map[string]any{
		"user_id": "ghost",
		"title":   "never created",
	})
	if !errors.Is(err, contractx.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
