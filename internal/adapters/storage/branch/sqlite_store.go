package branch

import (
	"context"
	"database/sql"
	"errors"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/branch"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new branch store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every branch ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, location FROM branches ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.Name, &b.Location); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// GetByName retrieves a branch by its exact name.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Branch, error) {
	var b domain.Branch
	err := s.db.QueryRowContext(ctx, "SELECT name, location FROM branches WHERE name = ?", name).Scan(&b.Name, &b.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Branch{}, ErrNotFound
	}
	return b, err
}

// Save inserts a branch or updates its location.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, value domain.Branch) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO branches (name, location) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET location = excluded.location",
		value.Name, value.Location)
	return err
}

// Count returns the number of branches.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM branches").Scan(&n)
	return n, err
}
