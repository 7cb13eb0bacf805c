package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/attendance"
	"gymportal/internal/domain/class"
	"gymportal/internal/domain/membership"
)

const (
	visitWindow      = 30 * 24 * time.Hour
	recentCheckIns   = 5
	upcomingClassCap = 5
)

// GetCustomerDashboardQuery carries input for the customer dashboard projection.
type GetCustomerDashboardQuery struct {
	CustomerID string
}

// GetCustomerDashboardDeps holds dependencies for the customer dashboard projection.
type GetCustomerDashboardDeps struct {
	Customers   CustomerStore
	Memberships MembershipStore
	Attendance  CustomerAttendanceStore
	Classes     UpcomingClassStore
}

// CustomerDashboard is everything the customer landing page shows.
type CustomerDashboard struct {
	Profile         account.Account
	Membership      *membership.Membership // nil when the customer has no current membership
	DaysRemaining   int
	VisitsLast30    int
	RecentCheckIns  []attendance.Attendance
	UpcomingClasses []class.Class
}

// QueryGetCustomerDashboard assembles the customer dashboard.
// PRE: CustomerID comes from an authenticated customer session
// POST: Profile is populated; missing membership leaves Membership nil
func QueryGetCustomerDashboard(ctx context.Context, query GetCustomerDashboardQuery, deps GetCustomerDashboardDeps, now time.Time) (CustomerDashboard, error) {
	profile, err := deps.Customers.GetByID(ctx, query.CustomerID)
	if err != nil {
		return CustomerDashboard{}, fmt.Errorf("load customer: %w", err)
	}
	result := CustomerDashboard{Profile: profile}

	m, err := deps.Memberships.GetActiveByCustomerID(ctx, profile.ID)
	switch {
	case err == nil && m.IsCurrent(now):
		result.Membership = &m
		result.DaysRemaining = m.DaysRemaining(now)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return CustomerDashboard{}, fmt.Errorf("load membership: %w", err)
	}

	result.VisitsLast30, err = deps.Attendance.CountByCustomerIDSince(ctx, profile.ID, now.Add(-visitWindow))
	if err != nil {
		return CustomerDashboard{}, fmt.Errorf("count visits: %w", err)
	}
	result.RecentCheckIns, err = deps.Attendance.ListRecentByCustomerID(ctx, profile.ID, recentCheckIns)
	if err != nil {
		return CustomerDashboard{}, fmt.Errorf("list check-ins: %w", err)
	}
	result.UpcomingClasses, err = deps.Classes.ListByBranchFrom(ctx, profile.Branch, now.Format("2006-01-02"), upcomingClassCap)
	if err != nil {
		return CustomerDashboard{}, fmt.Errorf("list classes: %w", err)
	}
	return result, nil
}
