package account

import (
	"context"
	"database/sql"
	"errors"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/account"
)

const customerColumns = "id, first_name, last_name, email, phone, password, branch, fitness_goal, remember_token, remember_expires_at, created_at, updated_at"

// CustomerSQLiteStore implements Store over the customers table.
type CustomerSQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*CustomerSQLiteStore)(nil)

// NewCustomerSQLiteStore creates a new CustomerSQLiteStore.
func NewCustomerSQLiteStore(db storage.SQLDB) *CustomerSQLiteStore {
	return &CustomerSQLiteStore{db: db}
}

// GetByID retrieves a customer by ID.
// PRE: id is non-empty
// POST: Returns the account or ErrNotFound
func (s *CustomerSQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id)
	return scanCustomer(row.Scan)
}

// GetByEmail retrieves a customer by email, ignoring case.
func (s *CustomerSQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE email = ? COLLATE NOCASE", domain.NormalizeEmail(email))
	return scanCustomer(row.Scan)
}

// Create inserts a new customer.
// PRE: value has been validated and has a password hash
// POST: Row exists, or ErrEmailTaken when the email is already used
func (s *CustomerSQLiteStore) Create(ctx context.Context, value domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO customers ("+customerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		value.ID,
		value.FirstName,
		value.LastName,
		domain.NormalizeEmail(value.Email),
		value.Phone,
		value.PasswordHash,
		value.Branch,
		value.FitnessGoal,
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

// Save updates every mutable column of an existing customer.
// PRE: value.ID identifies an existing row
// POST: Row matches value, or ErrNotFound
func (s *CustomerSQLiteStore) Save(ctx context.Context, value domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET first_name = ?, last_name = ?, email = ?, phone = ?, password = ?,
			branch = ?, fitness_goal = ?, remember_token = ?, remember_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		value.FirstName,
		value.LastName,
		domain.NormalizeEmail(value.Email),
		value.Phone,
		value.PasswordHash,
		value.Branch,
		value.FitnessGoal,
		nullString(value.RememberTokenHash),
		storage.FormatTime(value.RememberExpiresAt),
		storage.FormatTime(value.UpdatedAt),
		value.ID,
	)
	return checkUpdated(res, err)
}

// Count returns the number of customers.
func (s *CustomerSQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&count)
	return count, err
}

func scanCustomer(scan func(dest ...any) error) (domain.Account, error) {
	var (
		a                     domain.Account
		remember, rememberExp sql.NullString
		createdAt, updatedAt  sql.NullString
	)
	err := scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.PasswordHash,
		&a.Branch, &a.FitnessGoal, &remember, &rememberExp, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.Kind = domain.KindCustomer
	a.Role = domain.RoleCustomer
	a.RememberTokenHash = remember.String
	a.RememberExpiresAt = storage.ParseNullTime(rememberExp)
	a.CreatedAt = storage.ParseNullTime(createdAt)
	a.UpdatedAt = storage.ParseNullTime(updatedAt)
	return a, nil
}
