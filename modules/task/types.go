package task

import (
	"context"
	"time"
)

// CreateTaskRequest is the request for creating a task. Status, priority
// and due date are required; the due date must not be in the past.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTaskResponse is the response after creating a task.
type CreateTaskResponse struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID uint `json:"id"`
}

// TaskResponse represents a task in responses.
type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListTasksRequest is the request for the filtered, paged listing. Nil
// filter fields match everything. Nil Page defaults to 0, nil PageSize to
// DefaultPageSize; explicit non-positive sizes are rejected.
type ListTasksRequest struct {
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Overdue  *bool   `json:"overdue,omitempty"`
	Page     *int    `json:"page,omitempty"`
	PageSize *int    `json:"page_size,omitempty"`
	SortBy   string  `json:"sort_by,omitempty"`
	SortDesc bool    `json:"sort_desc,omitempty"`
}

// ListTasksResponse is one page of tasks plus the pagination totals.
// TotalPages is ceil(TotalItems / page size), 0 when nothing matches.
type ListTasksResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Page       int            `json:"page"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// ReplaceTaskRequest is the request for a full update. A nil DueDate keeps
// the stored value; a present one is validated against "now".
type ReplaceTaskRequest struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// PatchStatusRequest is the request for updating only a task's status.
type PatchStatusRequest struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ID      uint `json:"id"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatsRequest is the request for task statistics.
type StatsRequest struct{}

// StatsResponse carries the overdue counts and the sparse
// (status, priority) breakdown, all computed against one instant.
type StatsResponse struct {
	NotOverdueCount int64                 `json:"not_overdue_count"`
	OverdueCount    int64                 `json:"overdue_count"`
	DetailedStats   []StatusPriorityCount `json:"detailed_stats"`
}

// TaskPort is the contract consumed by driving adapters such as the HTTP
// api module.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*CreateTaskResponse, error)
	GetTask(ctx context.Context, id uint) (*TaskResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	ReplaceTask(ctx context.Context, req *ReplaceTaskRequest) (*MessageResponse, error)
	PatchTaskStatus(ctx context.Context, id uint, status string) (*MessageResponse, error)
	DeleteTask(ctx context.Context, id uint) (*DeleteTaskResponse, error)
	GetStats(ctx context.Context) (*StatsResponse, error)
}
