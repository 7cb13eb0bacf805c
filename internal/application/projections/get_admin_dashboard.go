package projections

import (
	"context"
	"fmt"
	"time"

	"gymportal/internal/domain/class"
)

// GetAdminDashboardQuery carries input for the admin dashboard projection.
type GetAdminDashboardQuery struct {
	Branch string // the branch picked at login, or the admin's own
}

// GetAdminDashboardDeps holds dependencies for the admin dashboard projection.
type GetAdminDashboardDeps struct {
	Customers  CustomerCounter
	Attendance BranchAttendanceStore
	Classes    DailyClassStore
}

// AdminDashboard summarises one branch for the current day.
type AdminDashboard struct {
	Branch        string
	CustomerCount int
	CheckInsToday int
	TodaysClasses []class.Class
}

// QueryGetAdminDashboard assembles the admin dashboard for query.Branch.
// "Today" is the calendar day of now in now's location.
func QueryGetAdminDashboard(ctx context.Context, query GetAdminDashboardQuery, deps GetAdminDashboardDeps, now time.Time) (AdminDashboard, error) {
	result := AdminDashboard{Branch: query.Branch}

	var err error
	result.CustomerCount, err = deps.Customers.Count(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("count customers: %w", err)
	}
	if query.Branch == "" {
		return result, nil
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	result.CheckInsToday, err = deps.Attendance.CountByBranchBetween(ctx, query.Branch, start, start.AddDate(0, 0, 1))
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("count check-ins: %w", err)
	}
	result.TodaysClasses, err = deps.Classes.ListByBranchOnDate(ctx, query.Branch, start.Format("2006-01-02"))
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("list classes: %w", err)
	}
	return result, nil
}
