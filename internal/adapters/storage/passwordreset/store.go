package passwordreset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gymportal/internal/domain/account"
	domain "gymportal/internal/domain/passwordreset"
)

// ErrNotFound wraps sql.ErrNoRows for an unknown token.
var ErrNotFound = fmt.Errorf("password reset not found: %w", sql.ErrNoRows)

// Store persists password reset requests.
type Store interface {
	Save(ctx context.Context, value domain.Request) error
	GetByTokenHash(ctx context.Context, tokenHash string) (domain.Request, error)
	// Consume marks request id used unless something already did.
	// POST: Returns true for exactly one caller per request
	Consume(ctx context.Context, id string, now time.Time) (bool, error)
	// InvalidateForEmail marks every unconsumed request for (kind, email) used at now.
	InvalidateForEmail(ctx context.Context, kind account.Kind, email string, now time.Time) (int64, error)
	// DeleteExpired removes requests that expired before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
