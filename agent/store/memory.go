package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// MemoryStore keeps everything in process memory. It backs tests and
// database-less runs of the protocol server.
type MemoryStore struct {
	mu sync.Mutex

	users         map[string]contractx.User
	tasks         map[int64]contractx.Task
	conversations map[int64]contractx.Conversation
	messages      map[int64]contractx.Message

	nextTaskID         int64
	nextConversationID int64
	nextMessageID      int64

	now func() time.Time
}

var _ contractx.Store = (*MemoryStore)(nil)

// MemoryOption customizes MemoryStore.
type MemoryOption func(*MemoryStore)

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		users:         make(map[string]contractx.User),
		tasks:         make(map[int64]contractx.Task),
		conversations: make(map[int64]contractx.Conversation),
		messages:      make(map[int64]contractx.Message),
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*contractx.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", contractx.ErrUserNotFound, id)
	}
	return &user, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *contractx.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(user.ID) == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) CreateTask(_ context.Context, task *contractx.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTaskID++
	now := s.now().UTC()
	task.ID = s.nextTaskID
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[task.ID] = *task
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, id int64) (*contractx.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, id)
	}
	return &task, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, task *contractx.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, task.ID)
	}
	task.UpdatedAt = s.now().UTC()
	s.tasks[task.ID] = *task
	return nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, id)
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) ListTasks(_ context.Context, ownerID string, status contractx.StatusFilter) ([]contractx.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []contractx.Task
	for _, task := range s.tasks {
		if task.UserID != ownerID {
			continue
		}
		switch status {
		case contractx.StatusPending:
			if task.Completed {
				continue
			}
		case contractx.StatusCompleted:
			if !task.Completed {
				continue
			}
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *MemoryStore) CreateConversation(_ context.Context, ownerID string) (*contractx.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextConversationID++
	now := s.now().UTC()
	conv := contractx.Conversation{
		ID:        s.nextConversationID,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conv.ID] = conv
	return &conv, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, id int64) (*contractx.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", contractx.ErrConversationNotFound, id)
	}
	return &conv, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, conversationID int64, ownerID string, role contractx.Role, content string) (*contractx.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return nil, fmt.Errorf("%w: id=%d", contractx.ErrConversationNotFound, conversationID)
	}

	s.nextMessageID++
	msg := contractx.Message{
		ID:             s.nextMessageID,
		ConversationID: conversationID,
		UserID:         ownerID,
		Role:           role,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	s.messages[msg.ID] = msg
	return &msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID int64) ([]contractx.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var messages []contractx.Message
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			messages = append(messages, msg)
		}
	}

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}
