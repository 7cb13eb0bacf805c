package attendance

import (
	"context"
	"time"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save records a check-in.
// PRE: value has been validated
// POST: Check-in is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, value domain.Attendance) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO attendance (id, customer_id, check_in) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET check_in = excluded.check_in",
		value.ID, value.CustomerID, storage.FormatTime(value.CheckIn))
	return err
}

// ListRecentByCustomerID returns up to limit check-ins, newest first.
func (s *SQLiteStore) ListRecentByCustomerID(ctx context.Context, customerID string, limit int) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, customer_id, check_in FROM attendance WHERE customer_id = ? ORDER BY check_in DESC LIMIT ?",
		customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		var (
			a       domain.Attendance
			checkIn string
		)
		if err := rows.Scan(&a.ID, &a.CustomerID, &checkIn); err != nil {
			return nil, err
		}
		if a.CheckIn, err = storage.ParseTime(checkIn); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// CountByCustomerIDSince counts the customer's check-ins at or after since.
func (s *SQLiteStore) CountByCustomerIDSince(ctx context.Context, customerID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE customer_id = ? AND check_in >= ?",
		customerID, storage.FormatTime(since)).Scan(&n)
	return n, err
}

// CountByBranchBetween counts check-ins in [from, to) by customers of branch.
func (s *SQLiteStore) CountByBranchBetween(ctx context.Context, branch string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance a
		JOIN customers c ON c.id = a.customer_id
		WHERE c.branch = ? AND a.check_in >= ? AND a.check_in < ?`,
		branch, storage.FormatTime(from), storage.FormatTime(to)).Scan(&n)
	return n, err
}
