package task

import (
	"context"
	"encoding/json"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module calls.
// It implements the TaskPort interface for driving adapters like the HTTP
// api module. Errors from the task services cross the bus as text, so
// callers classify them by message rather than errors.Is.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for the task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) call(ctx context.Context, service string, req, resp any) error {
	return helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	)
}

// CreateTask creates a new task via the create service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*CreateTaskResponse, error) {
	var resp CreateTaskResponse
	if err := a.call(ctx, "create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves a task by id via the get service.
func (a *taskAdapter) GetTask(ctx context.Context, id uint) (*TaskResponse, error) {
	req := GetTaskRequest{ID: id}
	var resp TaskResponse
	if err := a.call(ctx, "get", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks runs the filtered, paged listing via the list service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReplaceTask fully updates a task via the replace service.
func (a *taskAdapter) ReplaceTask(ctx context.Context, req *ReplaceTaskRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := a.call(ctx, "replace", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PatchTaskStatus updates only a task's status via the patch-status service.
func (a *taskAdapter) PatchTaskStatus(ctx context.Context, id uint, status string) (*MessageResponse, error) {
	req := PatchStatusRequest{ID: id, Status: status}
	var resp MessageResponse
	if err := a.call(ctx, "patch-status", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id uint) (*DeleteTaskResponse, error) {
	req := DeleteTaskRequest{ID: id}
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStats retrieves the task statistics via the stats service.
func (a *taskAdapter) GetStats(ctx context.Context) (*StatsResponse, error) {
	req := StatsRequest{}
	var resp StatsResponse
	if err := a.call(ctx, "stats", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
