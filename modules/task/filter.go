package task

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultPageSize is used when a listing request does not specify a size.
const DefaultPageSize = 5

// Filter selects tasks for a listing query. Nil fields impose no
// constraint; present fields are ANDed together. Overdue follows the same
// rule as the statistics counts: true matches tasks due strictly before
// "now" and not COMPLETED, false matches tasks due strictly after "now"
// and not COMPLETED.
type Filter struct {
	Status   *Status
	Priority *Priority
	Overdue  *bool
}

func (f Filter) apply(tx *gorm.DB, now time.Time) *gorm.DB {
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		tx = tx.Where("priority = ?", *f.Priority)
	}
	if f.Overdue != nil {
		if *f.Overdue {
			tx = tx.Where("due_date < ? AND status <> ?", now, StatusCompleted)
		} else {
			tx = tx.Where("due_date > ? AND status <> ?", now, StatusCompleted)
		}
	}
	return tx
}

// PageRequest carries pagination and ordering for a listing query.
// Page is zero-based.
type PageRequest struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// sortColumns whitelists the columns a listing may be ordered by.
var sortColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"status":     true,
	"priority":   true,
	"due_date":   true,
	"created_at": true,
	"updated_at": true,
}

// Validate rejects malformed pagination and sort parameters.
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("%w: page must not be negative, got %d", ErrInvalidArgument, p.Page)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidArgument, p.Size)
	}
	if p.SortBy != "" && !sortColumns[p.SortBy] {
		return fmt.Errorf("%w: cannot sort by %q", ErrInvalidArgument, p.SortBy)
	}
	return nil
}

// orderClause returns the ORDER BY expression for the request. The sort key
// defaults to due date ascending; ties are always broken by ascending id so
// page windows are deterministic.
func (p PageRequest) orderClause() string {
	column := p.SortBy
	if column == "" {
		column = "due_date"
	}
	direction := "ASC"
	if p.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id ASC", column, direction)
}
