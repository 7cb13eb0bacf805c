package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymportal/internal/adapters/email"
	domain "gymportal/internal/domain/outbox"
)

// OutboxStoreForProcessor defines the store interface needed by OutboxProcessor.
type OutboxStoreForProcessor interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// OutboxMetrics counts delivery attempts.
type OutboxMetrics interface {
	OutboxResult(action, status string)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload and returns the
	// provider's ID for it.
	Execute(ctx context.Context, payload string) (string, error)
}

// ErrEntryTerminal is returned when a manual retry targets a finished entry.
var ErrEntryTerminal = errors.New("outbox entry is in a terminal state")

// OutboxProcessor delivers queued external actions with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStoreForProcessor
	executors map[string]ActionExecutor
	metrics   OutboxMetrics
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a new outbox processor. metrics may be nil.
func NewOutboxProcessor(store OutboxStoreForProcessor, executors map[string]ActionExecutor, metrics OutboxMetrics) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 10,
	}
}

// OutboxRunResult summarises one ProcessPending pass.
type OutboxRunResult struct {
	Succeeded int
	Failed    int
	Deferred  int
}

// ProcessPending processes pending outbox entries whose backoff has elapsed.
// PRE: Context is valid
// POST: Each ready entry was attempted once and its new state saved
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (OutboxRunResult, error) {
	var result OutboxRunResult
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return result, fmt.Errorf("list pending outbox entries: %w", err)
	}

	now := p.now()
	for _, entry := range entries {
		if !entry.ReadyAt(now, p.baseDelay, p.maxDelay) {
			result.Deferred++
			continue
		}
		deliveryErr, err := p.attempt(ctx, entry, now)
		if err != nil {
			slog.Error("outbox_save_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err)
		}
		if deliveryErr == nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// ProcessSingle manually processes a single outbox entry, ignoring backoff.
// A failed entry gets exactly one extra attempt.
// PRE: entryID is non-empty
// POST: Entry is attempted once, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	switch entry.Status {
	case domain.StatusDone, domain.StatusAbandoned:
		return fmt.Errorf("%w: %s", ErrEntryTerminal, entryID)
	case domain.StatusFailed:
		entry.MaxAttempts = entry.Attempts + 1
	}
	deliveryErr, err := p.attempt(ctx, entry, p.now())
	if err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}
	return deliveryErr
}

// attempt runs one delivery and persists the outcome. It returns the delivery
// error, if any, and the error from saving the new state.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry, now time.Time) (deliveryErr, saveErr error) {
	entry.MarkAttempt(now)

	executor, ok := p.executors[entry.ActionType]
	var (
		externalID string
		err        error
	)
	if !ok {
		err = fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	} else {
		externalID, err = executor.Execute(ctx, entry.Payload)
	}

	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "attempt", entry.Attempts, "status", entry.Status, "error", err)
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	if p.metrics != nil {
		p.metrics.OutboxResult(entry.ActionType, entry.Status)
	}
	return err, p.store.Save(ctx, entry)
}

// --- Email Executor ---

// EmailExecutor sends EmailPayload entries through an email.Sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching EmailPayload
// POST: email accepted by the sender; returns the provider message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if len(p.To) == 0 {
		return "", errors.New("email payload has no recipients")
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:      p.To,
		Subject: p.Subject,
		HTML:    p.HTML,
		Text:    p.Text,
		Tags:    p.Tags,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}
