package task

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"golang.org/x/sync/errgroup"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// validateFields checks the mutable request fields shared by create and
// replace. Runs before any store mutation.
func validateFields(title, description string) error {
	if title == "" {
		return fmt.Errorf("%w: title cannot be blank", ErrValidation)
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, maxTitleLen)
	}
	if len(description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidation, maxDescriptionLen)
	}
	return nil
}

func validateDueDate(dueDate *time.Time, now time.Time) error {
	if dueDate != nil && dueDate.Before(now) {
		return fmt.Errorf("%w: due date cannot be in the past", ErrValidation)
	}
	return nil
}

// createTask handles the task.create service request.
func (m *TaskModule) createTask(_ context.Context, req CreateTaskRequest, _ *mono.Msg) (CreateTaskResponse, error) {
	if err := validateFields(req.Title, req.Description); err != nil {
		return CreateTaskResponse{}, err
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return CreateTaskResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return CreateTaskResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.DueDate == nil {
		return CreateTaskResponse{}, fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if err := validateDueDate(req.DueDate, time.Now()); err != nil {
		return CreateTaskResponse{}, err
	}

	// The store assigns the id and timestamps.
	newTask := &Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if err := m.repo.Create(newTask); err != nil {
		return CreateTaskResponse{}, err
	}

	return CreateTaskResponse{
		ID:        newTask.ID,
		Message:   "Task added successfully",
		CreatedAt: newTask.CreatedAt,
	}, nil
}

// getTask handles the task.get service request.
func (m *TaskModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	found, err := m.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(found), nil
}

// listTasks handles the task.list service request: the filtered, sorted,
// paged listing.
func (m *TaskModule) listTasks(_ context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	var filter Filter
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return ListTasksResponse{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		filter.Status = &status
	}
	if req.Priority != nil {
		priority, err := ParsePriority(*req.Priority)
		if err != nil {
			return ListTasksResponse{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		filter.Priority = &priority
	}
	filter.Overdue = req.Overdue

	page := PageRequest{
		Size:     DefaultPageSize,
		SortBy:   req.SortBy,
		SortDesc: req.SortDesc,
	}
	if req.Page != nil {
		page.Page = *req.Page
	}
	if req.PageSize != nil {
		page.Size = *req.PageSize
	}
	if err := page.Validate(); err != nil {
		return ListTasksResponse{}, err
	}

	tasks, total, err := m.repo.FindPage(filter, page, time.Now())
	if err != nil {
		return ListTasksResponse{}, err
	}

	response := ListTasksResponse{
		Tasks:      make([]TaskResponse, 0, len(tasks)),
		Page:       page.Page,
		TotalItems: total,
		TotalPages: int((total + int64(page.Size) - 1) / int64(page.Size)),
	}
	for _, t := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(t))
	}
	return response, nil
}

// replaceTask handles the task.replace service request: a full update of
// the mutable fields.
func (m *TaskModule) replaceTask(_ context.Context, req ReplaceTaskRequest, _ *mono.Msg) (MessageResponse, error) {
	if err := validateFields(req.Title, req.Description); err != nil {
		return MessageResponse{}, err
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return MessageResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return MessageResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validateDueDate(req.DueDate, time.Now()); err != nil {
		return MessageResponse{}, err
	}

	_, err = m.repo.Update(req.ID, TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{Message: "Task updated successfully"}, nil
}

// patchTaskStatus handles the task.patch-status service request. Only the
// status changes; the due date is not re-validated on this path.
func (m *TaskModule) patchTaskStatus(_ context.Context, req PatchStatusRequest, _ *mono.Msg) (MessageResponse, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return MessageResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := m.repo.UpdateStatus(req.ID, status); err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{Message: "Task status updated successfully"}, nil
}

// deleteTask handles the task.delete service request. Deletion is physical
// and refused while the task is IN_PROGRESS.
func (m *TaskModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.repo.Delete(req.ID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.ID}, err
	}
	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// getStats handles the task.stats service request. All three sub-queries
// share one captured "now" so the counts cannot straddle a moment boundary.
func (m *TaskModule) getStats(ctx context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	now := time.Now()

	var stats StatsResponse
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := m.repo.CountNotOverdue(now)
		stats.NotOverdueCount = count
		return err
	})
	g.Go(func() error {
		count, err := m.repo.CountOverdue(now)
		stats.OverdueCount = count
		return err
	})
	g.Go(func() error {
		rows, err := m.repo.CountByStatusAndPriority()
		stats.DetailedStats = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return StatsResponse{}, err
	}
	return stats, nil
}

// toTaskResponse converts a Task entity to a TaskResponse.
func toTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
