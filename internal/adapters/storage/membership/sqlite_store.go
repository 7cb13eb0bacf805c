package membership

import (
	"context"
	"database/sql"
	"errors"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/membership"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new membership store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save appends a membership row.
func (s *SQLiteStore) Save(ctx context.Context, value domain.Membership) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO memberships (customer_id, membership_type, status, end_date) VALUES (?, ?, ?, ?)",
		value.CustomerID, value.MembershipType, value.Status, storage.FormatTime(value.EndDate))
	return err
}

// GetActiveByCustomerID returns the active membership with the latest end date.
// POST: Returns the membership or ErrNotFound
func (s *SQLiteStore) GetActiveByCustomerID(ctx context.Context, customerID string) (domain.Membership, error) {
	var (
		m       domain.Membership
		endDate sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT customer_id, membership_type, status, end_date FROM memberships
		WHERE customer_id = ? AND status = ?
		ORDER BY end_date IS NULL DESC, end_date DESC LIMIT 1`,
		customerID, domain.StatusActive).Scan(&m.CustomerID, &m.MembershipType, &m.Status, &endDate)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Membership{}, ErrNotFound
	}
	if err != nil {
		return domain.Membership{}, err
	}
	m.EndDate = storage.ParseNullTime(endDate)
	return m, nil
}
