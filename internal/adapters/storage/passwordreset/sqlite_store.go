package passwordreset

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymportal/internal/adapters/storage"
	"gymportal/internal/domain/account"
	domain "gymportal/internal/domain/passwordreset"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new password reset store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a request.
// PRE: value.TokenHash is set
// POST: Row for value.ID matches value
func (s *SQLiteStore) Save(ctx context.Context, value domain.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (id, account_kind, email, token, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used_at = excluded.used_at, expires_at = excluded.expires_at`,
		value.ID,
		string(value.Kind),
		account.NormalizeEmail(value.Email),
		value.TokenHash,
		storage.FormatTime(value.ExpiresAt),
		storage.FormatTime(value.UsedAt),
		storage.FormatTime(value.CreatedAt),
	)
	return err
}

// GetByTokenHash looks a request up by the hash of its token.
// POST: Returns the request or ErrNotFound
func (s *SQLiteStore) GetByTokenHash(ctx context.Context, tokenHash string) (domain.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_kind, email, token, expires_at, used_at, created_at
		FROM password_resets WHERE token = ?`, tokenHash)

	var (
		r                    domain.Request
		kind                 string
		expiresAt, createdAt string
		usedAt               sql.NullString
	)
	err := row.Scan(&r.ID, &kind, &r.Email, &r.TokenHash, &expiresAt, &usedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, ErrNotFound
	}
	if err != nil {
		return domain.Request{}, err
	}
	r.Kind = account.Kind(kind)
	if r.ExpiresAt, err = storage.ParseTime(expiresAt); err != nil {
		return domain.Request{}, err
	}
	if r.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Request{}, err
	}
	r.UsedAt = storage.ParseNullTime(usedAt)
	return r, nil
}

// Consume claims the request with a conditional update, so concurrent
// redemptions of one token cannot both succeed.
func (s *SQLiteStore) Consume(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE password_resets SET used_at = ? WHERE id = ? AND used_at IS NULL",
		storage.FormatTime(now), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InvalidateForEmail marks outstanding requests for the address as used.
// POST: no unconsumed request remains for (kind, email)
func (s *SQLiteStore) InvalidateForEmail(ctx context.Context, kind account.Kind, email string, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE password_resets SET used_at = ? WHERE account_kind = ? AND email = ? AND used_at IS NULL",
		storage.FormatTime(now), string(kind), account.NormalizeEmail(email))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpired removes requests whose expiry is before cutoff.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM password_resets WHERE expires_at < ?", storage.FormatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
