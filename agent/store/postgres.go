package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

const defaultQueryTimeout = 5 * time.Second

// PostgresConfig configures the bun-backed store.
type PostgresConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" split_words:"true" default:"5s"`
}

// Option customizes PostgresStore.
type Option func(*PostgresStore)

func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *PostgresStore) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *PostgresStore) {
		if now != nil {
			s.now = now
		}
	}
}

// PostgresStore persists users, tasks, conversations and messages in
// Postgres through bun.
type PostgresStore struct {
	db           *bun.DB
	queryTimeout time.Duration
	now          func() time.Time
}

var _ contractx.Store = (*PostgresStore)(nil)

func NewPostgresStore(cfg PostgresConfig, opts ...Option) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	s := &PostgresStore{
		db:           db,
		queryTimeout: timeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Email        string    `bun:"email,notnull,unique"`
	Name         string    `bun:"name,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type taskRow struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,nullzero"`
	Completed   bool      `bun:"completed,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type conversationRow struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type messageRow struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID int64     `bun:"conversation_id,notnull"`
	UserID         string    `bun:"user_id,notnull"`
	Role           string    `bun:"role,notnull"`
	Content        string    `bun:"content,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*contractx.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", contractx.ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &contractx.User{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// CreateUser inserts a user. The external account surface owns user
// lifecycle; this exists so integration setups can share one store.
func (s *PostgresStore) CreateUser(ctx context.Context, user *contractx.User) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	if strings.TrimSpace(user.ID) == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}

	row := &userRow{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *contractx.Task) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	now := s.now().UTC()
	row := &taskRow{
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	task.ID = row.ID
	task.CreatedAt = row.CreatedAt
	task.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, id int64) (*contractx.Task, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	row := new(taskRow)
	err := s.db.NewSelect().Model(row).Where("t.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	task := taskFromRow(row)
	return &task, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task *contractx.Task) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	task.UpdatedAt = s.now().UTC()
	row := &taskRow{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, task.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	res, err := s.db.NewDelete().Model((*taskRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, id)
	}
	return nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, ownerID string, status contractx.StatusFilter) ([]contractx.Task, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var rows []taskRow
	q := s.db.NewSelect().Model(&rows).
		Where("t.user_id = ?", ownerID).
		Order("t.created_at ASC", "t.id ASC")

	switch status {
	case contractx.StatusPending:
		q = q.Where("t.completed = FALSE")
	case contractx.StatusCompleted:
		q = q.Where("t.completed = TRUE")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]contractx.Task, len(rows))
	for i := range rows {
		tasks[i] = taskFromRow(&rows[i])
	}
	return tasks, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, ownerID string) (*contractx.Conversation, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	now := s.now().UTC()
	row := &conversationRow{
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return &contractx.Conversation{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, id int64) (*contractx.Conversation, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	row := new(conversationRow)
	err := s.db.NewSelect().Model(row).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", contractx.ErrConversationNotFound, id)
		}
		return nil, fmt.Errorf("select conversation: %w", err)
	}
	return &contractx.Conversation{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, conversationID int64, ownerID string, role contractx.Role, content string) (*contractx.Message, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	row := &messageRow{
		ConversationID: conversationID,
		UserID:         ownerID,
		Role:           string(role),
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &contractx.Message{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		UserID:         row.UserID,
		Role:           contractx.Role(row.Role),
		Content:        row.Content,
		CreatedAt:      row.CreatedAt,
	}, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID int64) ([]contractx.Message, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var rows []messageRow
	err := s.db.NewSelect().Model(&rows).
		Where("m.conversation_id = ?", conversationID).
		Order("m.created_at ASC", "m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]contractx.Message, len(rows))
	for i, row := range rows {
		messages[i] = contractx.Message{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			UserID:         row.UserID,
			Role:           contractx.Role(row.Role),
			Content:        row.Content,
			CreatedAt:      row.CreatedAt,
		}
	}
	return messages, nil
}

func (s *PostgresStore) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

func taskFromRow(row *taskRow) contractx.Task {
	return contractx.Task{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
