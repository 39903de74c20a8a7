package tool

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

type handlers struct {
	store contractx.Store
}

func (h handlers) addTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	ownerID := args["user_id"].(string)
	if err := h.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	task := &contractx.Task{
		UserID: ownerID,
		Title:  args["title"].(string),
	}
	if desc, ok := args["description"].(string); ok {
		task.Description = desc
	}

	if err := h.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return taskSummary(task, "created"), nil
}

func (h handlers) listTasks(ctx context.Context, args map[string]any) (map[string]any, error) {
	ownerID := args["user_id"].(string)
	if err := h.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	status := contractx.StatusAll
	if raw, ok := args["status"].(string); ok && raw != "" {
		status = contractx.StatusFilter(raw)
	}

	tasks, err := h.store.ListTasks(ctx, ownerID, status)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(tasks))
	for i, task := range tasks {
		items[i] = map[string]any{
			"id":          task.ID,
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
			"created_at":  task.CreatedAt.Format(time.RFC3339),
			"updated_at":  task.UpdatedAt.Format(time.RFC3339),
		}
	}
	return map[string]any{"tasks": items}, nil
}

func (h handlers) completeTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	ownerID := args["user_id"].(string)
	if err := h.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	task, err := h.loadOwnedTask(ctx, ownerID, args)
	if err != nil {
		return nil, err
	}

	// Completing an already-completed task succeeds with the same summary.
	task.Completed = true
	if err := h.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return taskSummary(task, "completed"), nil
}

func (h handlers) deleteTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	ownerID := args["user_id"].(string)
	if err := h.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	task, err := h.loadOwnedTask(ctx, ownerID, args)
	if err != nil {
		return nil, err
	}

	if err := h.store.DeleteTask(ctx, task.ID); err != nil {
		return nil, err
	}
	return taskSummary(task, "deleted"), nil
}

func (h handlers) updateTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	ownerID := args["user_id"].(string)
	if err := h.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	task, err := h.loadOwnedTask(ctx, ownerID, args)
	if err != nil {
		return nil, err
	}

	if title, ok := args["title"].(string); ok {
		task.Title = title
	}
	if desc, ok := args["description"].(string); ok {
		task.Description = desc
	}

	// A no-field update is legal and still refreshes updated_at.
	if err := h.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return taskSummary(task, "updated"), nil
}

func (h handlers) requireOwner(ctx context.Context, ownerID string) error {
	_, err := h.store.GetUser(ctx, ownerID)
	return err
}

// loadOwnedTask resolves task_id scoped to the owner. A task that exists but
// belongs to someone else reports the same not-found condition as a missing
// task so that foreign ids never leak.
func (h handlers) loadOwnedTask(ctx context.Context, ownerID string, args map[string]any) (*contractx.Task, error) {
	taskID, ok := asInt64(args["task_id"])
	if !ok {
		return nil, fmt.Errorf("%w: parameter %q must be an integer", contractx.ErrValidation, "task_id")
	}

	task, err := h.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != ownerID {
		return nil, fmt.Errorf("%w: id=%d", contractx.ErrTaskNotFound, taskID)
	}
	return task, nil
}

func taskSummary(task *contractx.Task, status string) map[string]any {
	return map[string]any{
		"task_id": task.ID,
		"status":  status,
		"title":   task.Title,
	}
}
