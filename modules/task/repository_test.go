package task

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection because each in-memory connection is a separate
// database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// mustCreate inserts a task directly and fails the test on error.
func mustCreate(t *testing.T, repo *Repository, task *Task) *Task {
	t.Helper()
	if err := repo.Create(task); err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	due := timePtr(time.Now().Add(24 * time.Hour))
	created := mustCreate(t, repo, &Task{
		Title:    "Write report",
		Status:   StatusPending,
		Priority: PriorityHigh,
		DueDate:  due,
	})

	if created.ID == 0 {
		t.Error("expected store to assign an id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected store to assign timestamps")
	}

	var found Task
	if err := db.First(&found, created.ID).Error; err != nil {
		t.Fatalf("failed to find created task: %v", err)
	}
	if found.Title != "Write report" {
		t.Errorf("expected title %q, got %q", "Write report", found.Title)
	}

	t.Run("ids increase monotonically", func(t *testing.T) {
		second := mustCreate(t, repo, &Task{
			Title:    "Second task",
			Status:   StatusPending,
			Priority: PriorityLow,
			DueDate:  due,
		})
		if second.ID <= created.ID {
			t.Errorf("expected id greater than %d, got %d", created.ID, second.ID)
		}
	})

	t.Run("duplicate title and status is rejected", func(t *testing.T) {
		err := repo.Create(&Task{
			Title:    "Write report",
			Status:   StatusPending,
			Priority: PriorityLow,
			DueDate:  due,
		})
		if !errors.Is(err, ErrDuplicateTask) {
			t.Errorf("expected ErrDuplicateTask, got %v", err)
		}
	})

	t.Run("same title with different status is allowed", func(t *testing.T) {
		err := repo.Create(&Task{
			Title:    "Write report",
			Status:   StatusCompleted,
			Priority: PriorityHigh,
			DueDate:  due,
		})
		if err != nil {
			t.Errorf("Create() error = %v", err)
		}
	})
}

func TestRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	created := mustCreate(t, repo, &Task{
		Title:    "Find me",
		Status:   StatusPending,
		Priority: PriorityMedium,
		DueDate:  timePtr(time.Now().Add(time.Hour)),
	})

	t.Run("existing task", func(t *testing.T) {
		found, err := repo.FindByID(created.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Title != created.Title {
			t.Errorf("expected title %q, got %q", created.Title, found.Title)
		}
	})

	t.Run("non-existent task", func(t *testing.T) {
		_, err := repo.FindByID(9999)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_FindPage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	// Seven tasks with distinct due dates, one of them overdue, one
	// completed-and-overdue (which the overdue filter must exclude).
	seed := []*Task{
		{Title: "a", Status: StatusPending, Priority: PriorityLow, DueDate: timePtr(now.Add(1 * time.Hour))},
		{Title: "b", Status: StatusPending, Priority: PriorityHigh, DueDate: timePtr(now.Add(2 * time.Hour))},
		{Title: "c", Status: StatusInProgress, Priority: PriorityMedium, DueDate: timePtr(now.Add(3 * time.Hour))},
		{Title: "d", Status: StatusInProgress, Priority: PriorityHigh, DueDate: timePtr(now.Add(4 * time.Hour))},
		{Title: "e", Status: StatusCompleted, Priority: PriorityLow, DueDate: timePtr(now.Add(-2 * time.Hour))},
		{Title: "f", Status: StatusPending, Priority: PriorityLow, DueDate: timePtr(now.Add(-1 * time.Hour))},
		{Title: "g", Status: StatusCompleted, Priority: PriorityHigh, DueDate: timePtr(now.Add(5 * time.Hour))},
	}
	for _, s := range seed {
		mustCreate(t, repo, s)
	}

	t.Run("no filters pages through everything", func(t *testing.T) {
		tasks, total, err := repo.FindPage(Filter{}, PageRequest{Page: 0, Size: 3}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		if total != 7 {
			t.Errorf("expected total 7, got %d", total)
		}
		if len(tasks) != 3 {
			t.Errorf("expected 3 tasks on page 0, got %d", len(tasks))
		}
	})

	t.Run("default sort is ascending due date", func(t *testing.T) {
		tasks, _, err := repo.FindPage(Filter{}, PageRequest{Page: 0, Size: 7}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		for i := 1; i < len(tasks); i++ {
			if tasks[i].DueDate.Before(*tasks[i-1].DueDate) {
				t.Fatalf("tasks not sorted by due date: %v after %v", tasks[i].DueDate, tasks[i-1].DueDate)
			}
		}
	})

	t.Run("page beyond the end is empty with correct total", func(t *testing.T) {
		tasks, total, err := repo.FindPage(Filter{}, PageRequest{Page: 5, Size: 3}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		if total != 7 {
			t.Errorf("expected total 7, got %d", total)
		}
		if len(tasks) != 0 {
			t.Errorf("expected empty page, got %d tasks", len(tasks))
		}
	})

	t.Run("status filter", func(t *testing.T) {
		status := StatusPending
		_, total, err := repo.FindPage(Filter{Status: &status}, PageRequest{Size: 10}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		if total != 3 {
			t.Errorf("expected 3 pending tasks, got %d", total)
		}
	})

	t.Run("status and priority filters combine with AND", func(t *testing.T) {
		status := StatusPending
		priority := PriorityLow
		_, total, err := repo.FindPage(Filter{Status: &status, Priority: &priority}, PageRequest{Size: 10}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		if total != 2 {
			t.Errorf("expected 2 pending low tasks, got %d", total)
		}
	})

	t.Run("overdue filter excludes completed tasks", func(t *testing.T) {
		overdue := true
		tasks, total, err := repo.FindPage(Filter{Overdue: &overdue}, PageRequest{Size: 10}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		if total != 1 {
			t.Fatalf("expected 1 overdue task, got %d", total)
		}
		if tasks[0].Title != "f" {
			t.Errorf("expected task f, got %q", tasks[0].Title)
		}
	})

	t.Run("not-overdue filter excludes completed tasks", func(t *testing.T) {
		overdue := false
		_, total, err := repo.FindPage(Filter{Overdue: &overdue}, PageRequest{Size: 10}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		// a, b, c, d; g is completed and e/f are in the past.
		if total != 4 {
			t.Errorf("expected 4 not-overdue tasks, got %d", total)
		}
	})

	t.Run("equal sort keys break ties by ascending id", func(t *testing.T) {
		tasks, _, err := repo.FindPage(Filter{}, PageRequest{Size: 10, SortBy: "status"}, now)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		for i := 1; i < len(tasks); i++ {
			if tasks[i].Status == tasks[i-1].Status && tasks[i].ID < tasks[i-1].ID {
				t.Fatalf("tie not broken by ascending id: %d before %d", tasks[i-1].ID, tasks[i].ID)
			}
		}
	})
}

func TestRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	due := timePtr(time.Now().Add(24 * time.Hour))
	created := mustCreate(t, repo, &Task{
		Title:       "Original",
		Description: "Original description",
		Status:      StatusPending,
		Priority:    PriorityLow,
		DueDate:     due,
	})

	t.Run("replaces fields and refreshes updated_at", func(t *testing.T) {
		updated, err := repo.Update(created.ID, TaskUpdate{
			Title:       "Renamed",
			Description: "New description",
			Status:      StatusInProgress,
			Priority:    PriorityHigh,
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "Renamed" || updated.Status != StatusInProgress {
			t.Errorf("unexpected task after update: %+v", updated)
		}
		if updated.DueDate == nil || !updated.DueDate.Equal(*due) {
			t.Error("expected nil DueDate in the update to keep the stored value")
		}
		if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
			t.Error("expected updated_at >= created_at")
		}
	})

	t.Run("non-existent task", func(t *testing.T) {
		_, err := repo.Update(9999, TaskUpdate{Title: "x", Status: StatusPending, Priority: PriorityLow})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update onto an existing title and status pair", func(t *testing.T) {
		other := mustCreate(t, repo, &Task{
			Title:    "Renamed",
			Status:   StatusPending,
			Priority: PriorityLow,
			DueDate:  due,
		})
		_, err := repo.Update(other.ID, TaskUpdate{
			Title:    "Renamed",
			Status:   StatusInProgress,
			Priority: PriorityLow,
		})
		if !errors.Is(err, ErrDuplicateTask) {
			t.Errorf("expected ErrDuplicateTask, got %v", err)
		}
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	created := mustCreate(t, repo, &Task{
		Title:    "Patch me",
		Status:   StatusPending,
		Priority: PriorityMedium,
		DueDate:  timePtr(time.Now().Add(time.Hour)),
	})

	t.Run("updates only the status", func(t *testing.T) {
		updated, err := repo.UpdateStatus(created.ID, StatusCompleted)
		if err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if updated.Status != StatusCompleted {
			t.Errorf("expected status %s, got %s", StatusCompleted, updated.Status)
		}
		if updated.Title != created.Title {
			t.Errorf("expected title to be untouched, got %q", updated.Title)
		}
	})

	t.Run("non-existent task performs no write", func(t *testing.T) {
		_, err := repo.UpdateStatus(9999, StatusCompleted)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		var count int64
		if err := db.Model(&Task{}).Count(&count).Error; err != nil {
			t.Fatalf("failed to count tasks: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 task, got %d", count)
		}
	})
}

func TestRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	due := timePtr(time.Now().Add(time.Hour))

	t.Run("refuses to delete a task in progress", func(t *testing.T) {
		inProgress := mustCreate(t, repo, &Task{
			Title:    "Busy",
			Status:   StatusInProgress,
			Priority: PriorityHigh,
			DueDate:  due,
		})
		err := repo.Delete(inProgress.ID)
		if !errors.Is(err, ErrTaskInProgress) {
			t.Fatalf("expected ErrTaskInProgress, got %v", err)
		}
		if _, err := repo.FindByID(inProgress.ID); err != nil {
			t.Errorf("expected task to survive the refused delete, got %v", err)
		}
	})

	t.Run("deletes any other status physically", func(t *testing.T) {
		pending := mustCreate(t, repo, &Task{
			Title:    "Disposable",
			Status:   StatusPending,
			Priority: PriorityLow,
			DueDate:  due,
		})
		if err := repo.Delete(pending.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.FindByID(pending.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		// Physical delete, not a soft delete: the row is gone entirely.
		var count int64
		if err := db.Unscoped().Model(&Task{}).Where("id = ?", pending.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 0 {
			t.Error("expected row to be removed from the table")
		}
	})

	t.Run("non-existent task", func(t *testing.T) {
		if err := repo.Delete(9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	// A is overdue, B is not, C is overdue but completed and must be
	// excluded from both counts.
	mustCreate(t, repo, &Task{Title: "A", Status: StatusPending, Priority: PriorityHigh, DueDate: timePtr(now.Add(-24 * time.Hour))})
	mustCreate(t, repo, &Task{Title: "B", Status: StatusPending, Priority: PriorityLow, DueDate: timePtr(now.Add(24 * time.Hour))})
	mustCreate(t, repo, &Task{Title: "C", Status: StatusCompleted, Priority: PriorityMedium, DueDate: timePtr(now.Add(-24 * time.Hour))})

	overdue, err := repo.CountOverdue(now)
	if err != nil {
		t.Fatalf("CountOverdue() error = %v", err)
	}
	if overdue != 1 {
		t.Errorf("expected 1 overdue task, got %d", overdue)
	}

	notOverdue, err := repo.CountNotOverdue(now)
	if err != nil {
		t.Fatalf("CountNotOverdue() error = %v", err)
	}
	if notOverdue != 1 {
		t.Errorf("expected 1 not-overdue task, got %d", notOverdue)
	}

	rows, err := repo.CountByStatusAndPriority()
	if err != nil {
		t.Fatalf("CountByStatusAndPriority() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 grouped rows, got %d", len(rows))
	}
	counts := map[string]int64{}
	for _, row := range rows {
		counts[string(row.Status)+"/"+string(row.Priority)] = row.Count
	}
	for _, key := range []string{"PENDING/HIGH", "PENDING/LOW", "COMPLETED/MEDIUM"} {
		if counts[key] != 1 {
			t.Errorf("expected count 1 for %s, got %d", key, counts[key])
		}
	}
}
