package attendance

import (
	"errors"
	"time"
)

// Attendance is a single customer check-in at the front desk.
type Attendance struct {
	ID         string
	CustomerID string
	CheckIn    time.Time
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (a *Attendance) Validate() error {
	if a.CustomerID == "" {
		return errors.New("attendance must be associated with a customer")
	}
	if a.CheckIn.IsZero() {
		return errors.New("check-in time must be set")
	}
	return nil
}

// ClassDate returns the check-in day in YYYY-MM-DD form.
func (a *Attendance) ClassDate() string {
	return a.CheckIn.Format("2006-01-02")
}
