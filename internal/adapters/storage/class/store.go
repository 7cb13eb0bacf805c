package class

import (
	"context"

	domain "gymportal/internal/domain/class"
)

// Store persists Class state.
type Store interface {
	Save(ctx context.Context, value domain.Class) error
	// ListByBranchFrom returns classes at branch on or after fromDate (YYYY-MM-DD), soonest first.
	ListByBranchFrom(ctx context.Context, branch, fromDate string, limit int) ([]domain.Class, error)
	// ListByBranchOnDate returns the classes at branch on date (YYYY-MM-DD) by start time.
	ListByBranchOnDate(ctx context.Context, branch, date string) ([]domain.Class, error)
}
