package branch

import (
	"context"
	"database/sql"
	"fmt"

	domain "gymportal/internal/domain/branch"
)

// ErrNotFound wraps sql.ErrNoRows for an unknown branch name.
var ErrNotFound = fmt.Errorf("branch not found: %w", sql.ErrNoRows)

// Store persists Branch state.
type Store interface {
	List(ctx context.Context) ([]domain.Branch, error)
	GetByName(ctx context.Context, name string) (domain.Branch, error)
	Save(ctx context.Context, value domain.Branch) error
	Count(ctx context.Context) (int, error)
}
