package tool

import (
	contractx "github.com/taskwire/taskwire/agent/contract"
)

const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
	ToolUpdateTask   = "update_task"
)

// NewCatalog builds the registry of the five task tools bound to a store.
func NewCatalog(store contractx.Store) (*Registry, error) {
	h := handlers{store: store}

	summarySchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task_id": map[string]any{"type": "integer"},
			"status":  map[string]any{"type": "string"},
			"title":   map[string]any{"type": "string"},
		},
		"required": []string{"task_id", "status", "title"},
	}

	return NewRegistry(
		Definition{
			Name:        ToolAddTask,
			Description: "Create a new task",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":     map[string]any{"type": "string", "description": "User ID"},
					"title":       map[string]any{"type": "string", "description": "Task title"},
					"description": map[string]any{"type": "string", "description": "Task description (optional)"},
				},
				"required": []string{"user_id", "title"},
			},
			OutputSchema: summarySchema,
			Handler:      h.addTask,
		},
		Definition{
			Name:        ToolListTasks,
			Description: "Retrieve tasks from the list",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string", "description": "User ID"},
					"status": map[string]any{
						"type":        "string",
						"enum":        []string{"all", "pending", "completed"},
						"description": "Filter by status (optional)",
					},
				},
				"required": []string{"user_id"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tasks": map[string]any{"type": "array"},
				},
				"required": []string{"tasks"},
			},
			Handler: h.listTasks,
		},
		Definition{
			Name:        ToolCompleteTask,
			Description: "Mark a task as complete",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string", "description": "User ID"},
					"task_id": map[string]any{"type": "integer", "description": "Task ID to complete"},
				},
				"required": []string{"user_id", "task_id"},
			},
			OutputSchema: summarySchema,
			Handler:      h.completeTask,
		},
		Definition{
			Name:        ToolDeleteTask,
			Description: "Remove a task from the list",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string", "description": "User ID"},
					"task_id": map[string]any{"type": "integer", "description": "Task ID to delete"},
				},
				"required": []string{"user_id", "task_id"},
			},
			OutputSchema: summarySchema,
			Handler:      h.deleteTask,
		},
		Definition{
			Name:        ToolUpdateTask,
			Description: "Modify task title or description",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":     map[string]any{"type": "string", "description": "User ID"},
					"task_id":     map[string]any{"type": "integer", "description": "Task ID to update"},
					"title":       map[string]any{"type": "string", "description": "New title (optional)"},
					"description": map[string]any{"type": "string", "description": "New description (optional)"},
				},
				"required": []string{"user_id", "task_id"},
			},
			OutputSchema: summarySchema,
			Handler:      h.updateTask,
		},
	)
}
