package task

import "errors"

// Typed failures surfaced by the task services. Handlers and the HTTP
// boundary discriminate with errors.Is; the messages are part of the wire
// contract because service errors cross the mono request-reply bus as text.
var (
	// ErrNotFound is returned when no task exists for the given id.
	ErrNotFound = errors.New("task not found")

	// ErrDuplicateTask is returned when a write would produce two live
	// tasks with the same title and status.
	ErrDuplicateTask = errors.New("task with the same title and status already exists")

	// ErrValidation is returned for malformed task fields: blank or
	// oversized title, oversized description, missing enum or due date,
	// or a due date in the past on create/replace.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidArgument is returned for malformed pagination, sort, or
	// filter parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTaskInProgress is returned when deleting a task whose status is
	// IN_PROGRESS.
	ErrTaskInProgress = errors.New("cannot delete task with status IN_PROGRESS")
)
