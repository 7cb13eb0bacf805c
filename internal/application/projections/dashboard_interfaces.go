package projections

import (
	"context"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/attendance"
	"gymportal/internal/domain/class"
	"gymportal/internal/domain/membership"
)

// CustomerStore loads a customer profile.
type CustomerStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// CustomerCounter counts customer accounts.
type CustomerCounter interface {
	Count(ctx context.Context) (int, error)
}

// MembershipStore looks up the active membership of a customer.
type MembershipStore interface {
	GetActiveByCustomerID(ctx context.Context, customerID string) (membership.Membership, error)
}

// CustomerAttendanceStore reads a customer's check-ins.
type CustomerAttendanceStore interface {
	ListRecentByCustomerID(ctx context.Context, customerID string, limit int) ([]attendance.Attendance, error)
	CountByCustomerIDSince(ctx context.Context, customerID string, since time.Time) (int, error)
}

// BranchAttendanceStore counts check-ins at a branch.
type BranchAttendanceStore interface {
	CountByBranchBetween(ctx context.Context, branch string, from, to time.Time) (int, error)
}

// UpcomingClassStore lists classes on or after a date.
type UpcomingClassStore interface {
	ListByBranchFrom(ctx context.Context, branch, fromDate string, limit int) ([]class.Class, error)
}

// DailyClassStore lists the classes of one day.
type DailyClassStore interface {
	ListByBranchOnDate(ctx context.Context, branch, date string) ([]class.Class, error)
}
