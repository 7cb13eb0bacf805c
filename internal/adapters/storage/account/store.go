package account

import (
	"context"
	"database/sql"
	"fmt"

	domain "gymportal/internal/domain/account"
)

// Store errors. ErrNotFound wraps sql.ErrNoRows so callers may test either.
var (
	ErrNotFound   = fmt.Errorf("account not found: %w", sql.ErrNoRows)
	ErrEmailTaken = domain.ErrEmailTaken
)

// Store persists one kind of Account. Admins and customers live in separate
// tables and each table gets its own Store.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	// Create inserts a new row; a duplicate email yields ErrEmailTaken.
	Create(ctx context.Context, value domain.Account) error
	// Save updates an existing row; an unknown ID yields ErrNotFound.
	Save(ctx context.Context, value domain.Account) error
	Count(ctx context.Context) (int, error)
}
