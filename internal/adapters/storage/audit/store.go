package audit

import (
	"context"

	domain "gymportal/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event has an ID and timestamp
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events with optional filtering.
	// PRE: limit > 0
	// POST: Returns events ordered by timestamp desc
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Category  domain.Category
	Action    domain.Action
	AccountID string
	Email     string
}

var _ Store = (*SQLiteStore)(nil)
