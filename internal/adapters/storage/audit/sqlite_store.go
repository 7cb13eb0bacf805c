package audit

import (
	"context"
	"strings"

	"gymportal/internal/adapters/storage"
	domain "gymportal/internal/domain/audit"
)

const eventColumns = "id, timestamp, category, action, severity, account_kind, account_id, email, description, ip_address, user_agent"

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_event ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		event.ID, storage.FormatTime(event.Timestamp), string(event.Category), string(event.Action),
		string(event.Severity), event.AccountKind, event.AccountID, event.Email,
		event.Description, event.IPAddress, event.UserAgent)
	return err
}

// List returns audit events with optional filtering, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.Email != "" {
		where = append(where, "email = ? COLLATE NOCASE")
		args = append(args, filter.Email)
	}

	query := "SELECT " + eventColumns + " FROM audit_event"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e                          domain.Event
			ts                         string
			category, action, severity string
		)
		if err := rows.Scan(&e.ID, &ts, &category, &action, &severity, &e.AccountKind,
			&e.AccountID, &e.Email, &e.Description, &e.IPAddress, &e.UserAgent); err != nil {
			return nil, err
		}
		e.Timestamp, _ = storage.ParseTime(ts)
		e.Category = domain.Category(category)
		e.Action = domain.Action(action)
		e.Severity = domain.Severity(severity)
		events = append(events, e)
	}
	return events, rows.Err()
}
