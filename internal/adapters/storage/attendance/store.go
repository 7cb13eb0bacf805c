package attendance

import (
	"context"
	"time"

	domain "gymportal/internal/domain/attendance"
)

// Store persists Attendance state.
type Store interface {
	Save(ctx context.Context, value domain.Attendance) error
	// ListRecentByCustomerID returns the customer's newest check-ins first.
	ListRecentByCustomerID(ctx context.Context, customerID string, limit int) ([]domain.Attendance, error)
	// CountByCustomerIDSince counts check-ins at or after since.
	CountByCustomerIDSince(ctx context.Context, customerID string, since time.Time) (int, error)
	// CountByBranchBetween counts check-ins in [from, to) by customers registered at branch.
	CountByBranchBetween(ctx context.Context, branch string, from, to time.Time) (int, error)
}
