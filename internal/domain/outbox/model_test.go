package outbox_test

import (
	"errors"
	"testing"
	"time"

	"gymportal/internal/domain/outbox"
)

func TestEntry_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		entry   outbox.Entry
		wantErr error
	}{
		{"valid", outbox.NewEntry("1", outbox.ActionTypeEmail, `{"to":"a@b.co"}`, now), nil},
		{"missing action", outbox.Entry{Payload: "{}", CreatedAt: now}, outbox.ErrEmptyActionType},
		{"missing payload", outbox.Entry{ActionType: outbox.ActionTypeEmail, CreatedAt: now}, outbox.ErrEmptyPayload},
		{"missing created", outbox.Entry{ActionType: outbox.ActionTypeEmail, Payload: "{}"}, outbox.ErrMissingCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.entry.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntry_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.NewEntry("1", outbox.ActionTypeEmail, "{}", now)
	e.MaxAttempts = 2

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("provider down"))
	if e.Status != outbox.StatusRetrying || !e.CanRetry() {
		t.Fatalf("after first failure status = %s, CanRetry = %v", e.Status, e.CanRetry())
	}

	e.MarkAttempt(now.Add(time.Minute))
	e.MarkFailed(errors.New("provider down"))
	if e.Status != outbox.StatusFailed || !e.IsTerminal() {
		t.Fatalf("after max attempts status = %s", e.Status)
	}
	if e.ErrorMessage != "provider down" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}
}

func TestEntry_NextRetryDelay(t *testing.T) {
	e := outbox.Entry{Attempts: 3}
	if got := e.NextRetryDelay(time.Second, time.Hour); got != 8*time.Second {
		t.Errorf("NextRetryDelay() = %v, want 8s", got)
	}
	e.Attempts = 20
	if got := e.NextRetryDelay(time.Second, time.Hour); got != time.Hour {
		t.Errorf("NextRetryDelay() = %v, want cap", got)
	}
}

func TestEntry_ReadyAt(t *testing.T) {
	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.Entry{Attempts: 1, LastAttemptedAt: last}
	if e.ReadyAt(last.Add(time.Second), time.Second, time.Hour) {
		t.Error("should wait 2s after first attempt")
	}
	if !e.ReadyAt(last.Add(2*time.Second), time.Second, time.Hour) {
		t.Error("should be ready after backoff")
	}
}
