package task

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository provides access to task storage. Every call reads the latest
// committed state; there is no caching layer in front of the database.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TaskUpdate carries the replacement values for a full update. A nil
// DueDate keeps the stored value.
type TaskUpdate struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// StatusPriorityCount is one row of the grouped statistics breakdown.
type StatusPriorityCount struct {
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	Count    int64    `json:"count"`
}

// Create saves a new task. The store assigns the id and both timestamps.
func (r *Repository) Create(task *Task) error {
	if err := r.db.Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTask
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its id.
func (r *Repository) FindByID(id uint) (*Task, error) {
	var task Task
	if err := r.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindPage runs the filtered, sorted, paged listing query and returns the
// page window plus the total number of matching tasks. The caller supplies
// "now" so the overdue predicate and any sibling statistics share one
// evaluation instant.
func (r *Repository) FindPage(f Filter, p PageRequest, now time.Time) ([]*Task, int64, error) {
	// New session so the filtered query can run both Count and Find.
	base := f.apply(r.db.Model(&Task{}), now).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	var tasks []*Task
	err := base.
		Order(p.orderClause()).
		Limit(p.Size).
		Offset(p.Page * p.Size).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update replaces the mutable fields of a task inside one transaction, so a
// concurrent delete between the read and the write surfaces as ErrNotFound
// instead of resurrecting the row.
func (r *Repository) Update(id uint, up TaskUpdate) (*Task, error) {
	var task Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		task.Title = up.Title
		task.Description = up.Description
		task.Status = up.Status
		task.Priority = up.Priority
		if up.DueDate != nil {
			task.DueDate = up.DueDate
		}
		if err := tx.Save(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTask
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus changes only the status of a task, atomically. No due-date
// re-validation happens on this path.
func (r *Repository) UpdateStatus(id uint, status Status) (*Task, error) {
	var task Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		task.Status = status
		if err := tx.Save(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTask
			}
			return fmt.Errorf("failed to update task status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete physically removes a task. The IN_PROGRESS guard runs inside the
// delete transaction so a concurrent status patch cannot slip past it.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		if task.Status == StatusInProgress {
			return ErrTaskInProgress
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// CountOverdue counts tasks due strictly before now, excluding COMPLETED.
func (r *Repository) CountOverdue(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&Task{}).
		Where("due_date < ? AND status <> ?", now, StatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return count, nil
}

// CountNotOverdue counts tasks due strictly after now, excluding COMPLETED.
func (r *Repository) CountNotOverdue(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&Task{}).
		Where("due_date > ? AND status <> ?", now, StatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count not-overdue tasks: %w", err)
	}
	return count, nil
}

// CountByStatusAndPriority returns task counts grouped by (status,
// priority), ordered for stable output. Pairs with no tasks are omitted.
func (r *Repository) CountByStatusAndPriority() ([]StatusPriorityCount, error) {
	var rows []StatusPriorityCount
	err := r.db.Model(&Task{}).
		Select("status, priority, count(*) as count").
		Group("status").
		Group("priority").
		Order("status, priority").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status and priority: %w", err)
	}
	return rows, nil
}
