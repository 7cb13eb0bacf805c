package outbox

import (
	"context"
	"database/sql"
	"fmt"

	domain "gymportal/internal/domain/outbox"
)

// ErrNotFound wraps sql.ErrNoRows for an unknown entry.
var ErrNotFound = fmt.Errorf("outbox entry not found: %w", sql.ErrNoRows)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry to the database.
	// PRE: entry has been validated
	// POST: Entry is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries that still need delivery (pending or retrying).
	// PRE: limit > 0
	// POST: Returns up to limit entries, oldest first
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts.
	// PRE: limit > 0
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}
