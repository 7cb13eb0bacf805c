package class

import (
	"context"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/class"
)

const classColumns = "id, branch, name, instructor, class_date, start_time"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new class store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a class.
func (s *SQLiteStore) Save(ctx context.Context, value domain.Class) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classes (`+classColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET branch = excluded.branch, name = excluded.name,
			instructor = excluded.instructor, class_date = excluded.class_date, start_time = excluded.start_time`,
		value.ID, value.Branch, value.Name, value.Instructor, value.ClassDate, value.StartTime)
	return err
}

// ListByBranchFrom returns up to limit classes at branch from fromDate onward.
func (s *SQLiteStore) ListByBranchFrom(ctx context.Context, branch, fromDate string, limit int) ([]domain.Class, error) {
	return s.list(ctx,
		"SELECT "+classColumns+" FROM classes WHERE branch = ? AND class_date >= ? ORDER BY class_date, start_time LIMIT ?",
		branch, fromDate, limit)
}

// ListByBranchOnDate returns the classes at branch on date.
func (s *SQLiteStore) ListByBranchOnDate(ctx context.Context, branch, date string) ([]domain.Class, error) {
	return s.list(ctx,
		"SELECT "+classColumns+" FROM classes WHERE branch = ? AND class_date = ? ORDER BY start_time",
		branch, date)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Class, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []domain.Class
	for rows.Next() {
		var c domain.Class
		if err := rows.Scan(&c.ID, &c.Branch, &c.Name, &c.Instructor, &c.ClassDate, &c.StartTime); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
