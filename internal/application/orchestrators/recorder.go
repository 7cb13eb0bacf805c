package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

// AuditStoreForRecorder defines the store interface needed to persist audit events.
type AuditStoreForRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// AuthMetrics counts authentication outcomes.
type AuthMetrics interface {
	AuthEvent(kind, event string)
}

// Recorder fans an account event out to the structured log, the audit table
// and the metrics counters. A nil *Recorder only logs.
type Recorder struct {
	Audit   AuditStoreForRecorder
	Metrics AuthMetrics
}

// record writes one event. Audit persistence failures are logged, never returned:
// losing an audit row must not fail a login.
func (r *Recorder) record(ctx context.Context, e audit.Event, attrs ...any) {
	e = e.FromContext(ctx)
	args := append([]any{
		"event", string(e.Action),
		"kind", e.AccountKind,
		"account_id", e.AccountID,
		"email", e.Email,
	}, attrs...)
	if e.Severity == audit.SeverityWarning {
		slog.Warn("auth_event", args...)
	} else {
		slog.Info("auth_event", args...)
	}

	if r == nil {
		return
	}
	if r.Metrics != nil {
		r.Metrics.AuthEvent(e.AccountKind, string(e.Action))
	}
	if r.Audit != nil {
		if err := r.Audit.Save(ctx, e); err != nil {
			slog.Error("audit_save_failed", "action", string(e.Action), "error", err)
		}
	}
}

func accountEvent(category audit.Category, action audit.Action, kind account.Kind, id, email string, now time.Time) audit.Event {
	return audit.NewEvent(category, action, now).WithAccount(string(kind), id, email)
}

func nowFrom(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now().UTC()
	}
	return fn()
}

func newID(fn func() string) string {
	if fn == nil {
		return uuid.New().String()
	}
	return fn()
}
