package task

import (
	"fmt"
	"time"
)

// Status represents the workflow state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// ParseStatus validates a status value received from a client.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q, allowed values are: %s, %s, %s",
		s, StatusPending, StatusInProgress, StatusCompleted)
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority validates a priority value received from a client.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q, allowed values are: %s, %s, %s",
		s, PriorityLow, PriorityMedium, PriorityHigh)
}

// Task is a tracked work item. No two live tasks may share both title and
// status; the composite unique index enforces that at the store level so
// concurrent inserts cannot both succeed.
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Title       string     `gorm:"size:100;not null;uniqueIndex:idx_tasks_title_status" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Status      Status     `gorm:"size:20;not null;uniqueIndex:idx_tasks_title_status" json:"status"`
	Priority    Priority   `gorm:"size:20;not null" json:"priority"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}
