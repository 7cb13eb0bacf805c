package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is the layout every TEXT timestamp column is written with.
// Fixed-width fractions keep string comparison in SQL chronological.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	sql         string
}

var migrations = []migration{
	{
		version:     1,
		description: "credential, reset and dashboard tables",
		sql: `
	CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		branch TEXT NOT NULL DEFAULT '',
		remember_token TEXT,
		remember_expires_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		phone TEXT NOT NULL,
		password TEXT NOT NULL,
		branch TEXT NOT NULL,
		fitness_goal TEXT NOT NULL DEFAULT '',
		remember_token TEXT,
		remember_expires_at TEXT,
		profile_image TEXT NOT NULL DEFAULT '',
		subscription_type TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS branches (
		name TEXT PRIMARY KEY,
		location TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS password_resets (
		id TEXT PRIMARY KEY,
		account_kind TEXT NOT NULL,
		email TEXT NOT NULL COLLATE NOCASE,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		used_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_password_resets_email ON password_resets(account_kind, email);

	CREATE TABLE IF NOT EXISTS memberships (
		customer_id TEXT NOT NULL,
		membership_type TEXT NOT NULL,
		status TEXT NOT NULL,
		end_date TEXT,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		check_in TEXT NOT NULL,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_customer ON attendance(customer_id, check_in);

	CREATE TABLE IF NOT EXISTS classes (
		id TEXT PRIMARY KEY,
		branch TEXT NOT NULL,
		name TEXT NOT NULL,
		instructor TEXT NOT NULL DEFAULT '',
		class_date TEXT NOT NULL,
		start_time TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_classes_branch_date ON classes(branch, class_date);
	`,
	},
	{
		version:     2,
		description: "audit log and outbox",
		sql: `
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		account_kind TEXT NOT NULL DEFAULT '',
		account_id TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`,
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the currently applied schema version (0 for a fresh database).
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL)"); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var version sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC().Format(TimeLayout)); err != nil {
		return err
	}
	return tx.Commit()
}

// FormatTime renders t for a TEXT column; the zero time becomes NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a TEXT timestamp written by FormatTime or by SQLite itself.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// ParseNullTime is ParseTime for nullable columns; NULL and "" give the zero time.
func ParseNullTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := ParseTime(s.String)
	return t
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
