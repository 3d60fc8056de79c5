package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/example/task-manager/modules/task"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes. The stats route must be
// registered before the :id route or "stats" would parse as an id.
func (m *APIModule) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	tasks := m.app.Group("/api/tasks")
	tasks.Get("/stats", m.getStats)
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.replaceTask)
	tasks.Patch("/:id/status", m.patchStatus)
	tasks.Delete("/:id", m.deleteTask)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"addr":   m.httpAddr,
		},
	})
}

// listTasks handles GET /api/tasks with optional status, priority and
// overdue filters plus page, size, sort and order parameters.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	req := task.ListTasksRequest{
		SortBy:   c.Query("sort"),
		SortDesc: c.Query("order") == "desc",
	}

	if s := c.Query("status"); s != "" {
		req.Status = &s
	}
	if p := c.Query("priority"); p != "" {
		req.Priority = &p
	}
	if o := c.Query("overdue"); o != "" {
		overdue, err := strconv.ParseBool(o)
		if err != nil {
			return badRequest(c, "overdue must be true or false")
		}
		req.Overdue = &overdue
	}
	if p := c.Query("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			return badRequest(c, "page must be an integer")
		}
		req.Page = &page
	}
	if s := c.Query("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "size must be an integer")
		}
		req.PageSize = &size
	}

	resp, err := m.tasks.ListTasks(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ListTasksResponse{
		Tasks:      resp.Tasks,
		Page:       resp.Page,
		TotalItems: resp.TotalItems,
		TotalPages: resp.TotalPages,
	})
}

// getTask handles GET /api/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "task id must be a positive integer")
	}

	resp, err := m.tasks.GetTask(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// createTask handles POST /api/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var body CreateTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	resp, err := m.tasks.CreateTask(c.Context(), &task.CreateTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(CreateTaskResponse{
		ID:        resp.ID,
		Message:   resp.Message,
		CreatedAt: resp.CreatedAt,
	})
}

// replaceTask handles PUT /api/tasks/:id.
func (m *APIModule) replaceTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "task id must be a positive integer")
	}

	var body ReplaceTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	resp, err := m.tasks.ReplaceTask(c.Context(), &task.ReplaceTaskRequest{
		ID:          id,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: resp.Message})
}

// patchStatus handles PATCH /api/tasks/:id/status?status=...
func (m *APIModule) patchStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "task id must be a positive integer")
	}

	status := c.Query("status")
	if status == "" {
		return badRequest(c, "status query parameter is required")
	}

	resp, err := m.tasks.PatchTaskStatus(c.Context(), id, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: resp.Message})
}

// deleteTask handles DELETE /api/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "task id must be a positive integer")
	}

	if _, err := m.tasks.DeleteTask(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Task deleted successfully"})
}

// getStats handles GET /api/tasks/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	resp, err := m.tasks.GetStats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_argument",
		Message: message,
	})
}

// respondError maps a task service error to an HTTP status. Errors that
// crossed the service bus arrive as text, so the match falls back to the
// sentinel messages when errors.Is cannot see the chain.
func respondError(c *fiber.Ctx, err error) error {
	code, kind := classify(err)
	return c.Status(code).JSON(ErrorResponse{
		Error:   kind,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	switch {
	case matches(err, task.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case matches(err, task.ErrDuplicateTask):
		return fiber.StatusConflict, "constraint_violation"
	case matches(err, task.ErrTaskInProgress):
		return fiber.StatusConflict, "invalid_operation"
	case matches(err, task.ErrValidation):
		return fiber.StatusBadRequest, "validation_error"
	case matches(err, task.ErrInvalidArgument):
		return fiber.StatusBadRequest, "invalid_argument"
	}
	return fiber.StatusInternalServerError, "internal_error"
}

func matches(err, sentinel error) bool {
	return errors.Is(err, sentinel) || strings.Contains(err.Error(), sentinel.Error())
}
