package account

import (
	"context"
	"database/sql"
	"errors"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/account"
)

const adminColumns = "id, name, email, password, role, branch, remember_token, remember_expires_at, created_at, updated_at"

// AdminSQLiteStore implements Store over the admins table.
type AdminSQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*AdminSQLiteStore)(nil)

// NewAdminSQLiteStore creates a new AdminSQLiteStore.
func NewAdminSQLiteStore(db storage.SQLDB) *AdminSQLiteStore {
	return &AdminSQLiteStore{db: db}
}

// GetByID retrieves an admin by ID.
// PRE: id is non-empty
// POST: Returns the account or ErrNotFound
func (s *AdminSQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+adminColumns+" FROM admins WHERE id = ?", id)
	return scanAdmin(row.Scan)
}

// GetByEmail retrieves an admin by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the account or ErrNotFound
func (s *AdminSQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+adminColumns+" FROM admins WHERE email = ? COLLATE NOCASE", domain.NormalizeEmail(email))
	return scanAdmin(row.Scan)
}

// Create inserts a new admin.
// PRE: value has been validated and has a password hash
// POST: Row exists, or ErrEmailTaken when the email is already used
func (s *AdminSQLiteStore) Create(ctx context.Context, value domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO admins ("+adminColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		value.ID,
		value.Name,
		domain.NormalizeEmail(value.Email),
		value.PasswordHash,
		value.Role,
		value.Branch,
		nullString(value.RememberTokenHash),
		storage.FormatTime(value.RememberExpiresAt),
		storage.FormatTime(value.CreatedAt),
		storage.FormatTime(value.UpdatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// Save updates every mutable column of an existing admin.
// PRE: value.ID identifies an existing row
// POST: Row matches value, or ErrNotFound
func (s *AdminSQLiteStore) Save(ctx context.Context, value domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE admins SET name = ?, email = ?, password = ?, role = ?, branch = ?,
			remember_token = ?, remember_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		value.Name,
		domain.NormalizeEmail(value.Email),
		value.PasswordHash,
		value.Role,
		value.Branch,
		nullString(value.RememberTokenHash),
		storage.FormatTime(value.RememberExpiresAt),
		storage.FormatTime(value.UpdatedAt),
		value.ID,
	)
	return checkUpdated(res, err)
}

// Count returns the number of admins.
func (s *AdminSQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&count)
	return count, err
}

func scanAdmin(scan func(dest ...any) error) (domain.Account, error) {
	var (
		a                     domain.Account
		remember, rememberExp sql.NullString
		createdAt, updatedAt  sql.NullString
	)
	err := scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Branch,
		&remember, &rememberExp, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.Kind = domain.KindAdmin
	a.RememberTokenHash = remember.String
	a.RememberExpiresAt = storage.ParseNullTime(rememberExp)
	a.CreatedAt = storage.ParseNullTime(createdAt)
	a.UpdatedAt = storage.ParseNullTime(updatedAt)
	return a, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkUpdated(res sql.Result, err error) error {
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
