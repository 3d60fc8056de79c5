package api

import (
	"time"

	"github.com/example/task-manager/modules/task"
)

// CreateTaskRequest is the HTTP request body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// ReplaceTaskRequest is the HTTP request body for a full task update.
type ReplaceTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTaskResponse is the HTTP response after creating a task.
type CreateTaskResponse struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListTasksResponse is the HTTP response for the paged listing.
type ListTasksResponse struct {
	Tasks      []task.TaskResponse `json:"tasks"`
	Page       int                 `json:"page"`
	TotalItems int64               `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
}

// HealthResponse is the HTTP response for the health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
