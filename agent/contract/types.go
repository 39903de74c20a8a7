package contract

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StatusFilter narrows a task listing by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPending   StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
)

func (s StatusFilter) Valid() bool {
	switch s {
	case StatusAll, StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Task struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Conversation struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToolCall is a request to invoke one registered tool. It is produced by the
// reasoning engine or the intent extractor and consumed by the orchestrator;
// only the messages that result from it are ever persisted.
type ToolCall struct {
	Tool   string         `json:"tool_name"`
	Params map[string]any `json:"parameters,omitempty"`
}

// ToolOutcome records one attempted tool call within a chat turn.
type ToolOutcome struct {
	Tool   string         `json:"tool_name"`
	Params map[string]any `json:"parameters,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type ChatRequest struct {
	ConversationID *int64 `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

type ChatResponse struct {
	ConversationID int64         `json:"conversation_id"`
	Reply          string        `json:"response"`
	ToolCalls      []ToolOutcome `json:"tool_calls,omitempty"`
}

// EngineResult is what a reasoning engine produced for one user message.
type EngineResult struct {
	Reply     string     `json:"reply"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}
