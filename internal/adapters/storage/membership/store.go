package membership

import (
	"context"
	"database/sql"
	"fmt"

	domain "gymportal/internal/domain/membership"
)

// ErrNotFound wraps sql.ErrNoRows when a customer has no active membership.
var ErrNotFound = fmt.Errorf("membership not found: %w", sql.ErrNoRows)

// Store persists Membership state.
type Store interface {
	Save(ctx context.Context, value domain.Membership) error
	// GetActiveByCustomerID returns the active membership ending last.
	GetActiveByCustomerID(ctx context.Context, customerID string) (domain.Membership, error)
}
