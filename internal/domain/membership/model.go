package membership

import "time"

// Status constants
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Membership is a customer's subscription to the gym.
type Membership struct {
	CustomerID     string
	MembershipType string
	Status         string
	EndDate        time.Time
}

// IsCurrent returns true if the membership is active and not past its end date.
func (m *Membership) IsCurrent(now time.Time) bool {
	if m.Status != StatusActive {
		return false
	}
	return m.EndDate.IsZero() || !now.After(m.EndDate)
}

// DaysRemaining returns whole days until EndDate, or 0 when already past.
func (m *Membership) DaysRemaining(now time.Time) int {
	if m.EndDate.IsZero() || now.After(m.EndDate) {
		return 0
	}
	return int(m.EndDate.Sub(now).Hours() / 24)
}
