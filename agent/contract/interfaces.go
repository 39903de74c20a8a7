package contract

import "context"

type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, ownerID string, status StatusFilter) ([]Task, error)
}

type ConversationStore interface {
	CreateConversation(ctx context.Context, ownerID string) (*Conversation, error)
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	AppendMessage(ctx context.Context, conversationID int64, ownerID string, role Role, content string) (*Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]Message, error)
}

// Store is the full persistence surface the core consumes.
type Store interface {
	UserStore
	TaskStore
	ConversationStore
}

// Engine turns a user message plus ordered history into a reply and an
// ordered list of tool calls. Implementations may be unconfigured or fail;
// both conditions route the caller to the fallback extractor.
type Engine interface {
	Run(ctx context.Context, message string, history []Message) (EngineResult, error)
}

// ToolDispatcher executes one named tool with already-merged arguments.
type ToolDispatcher interface {
	Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}
