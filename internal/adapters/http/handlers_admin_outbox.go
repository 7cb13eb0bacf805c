package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gymportal/internal/adapters/http/middleware"
	outboxStore "gymportal/internal/adapters/storage/outbox"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/outbox"
)

// outboxView is the JSON shape of an outbox entry. The payload is left out:
// reset emails carry live tokens.
type outboxView struct {
	ID              string `json:"id"`
	ActionType      string `json:"action_type"`
	Status          string `json:"status"`
	Attempts        int    `json:"attempts"`
	MaxAttempts     int    `json:"max_attempts"`
	LastAttemptedAt string `json:"last_attempted_at,omitempty"`
	CreatedAt       string `json:"created_at"`
	ExternalID      string `json:"external_id,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

func newOutboxView(e outbox.Entry) outboxView {
	v := outboxView{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		ExternalID:   e.ExternalID,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		v.LastAttemptedAt = e.LastAttemptedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return v
}

func requireAdminRole(w http.ResponseWriter, r *http.Request) bool {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if sess.Role != account.RoleAdmin {
		http.Error(w, "admin required", http.StatusForbidden)
		return false
	}
	return true
}

// handleAdminOutbox lists outbox entries as JSON (GET /admin/outbox).
// ?status=failed (default) lists entries that gave up; ?status=pending lists the queue.
func (s *Server) handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if !requireAdminRole(w, r) {
		return
	}
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	var (
		entries []outbox.Entry
		err     error
	)
	switch r.URL.Query().Get("status") {
	case "", outbox.StatusFailed:
		entries, err = s.Stores.Outbox.ListFailed(r.Context(), limit)
	case outbox.StatusPending:
		entries, err = s.Stores.Outbox.ListPending(r.Context(), limit)
	default:
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	views := make([]outboxView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newOutboxView(e))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

// handleAdminOutboxRetry attempts one entry now (POST /admin/outbox/{id}/retry).
func (s *Server) handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if !requireAdminRole(w, r) {
		return
	}
	if s.Outbox == nil {
		http.Error(w, "outbox delivery is not running", http.StatusServiceUnavailable)
		return
	}
	err := s.Outbox.ProcessSingle(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, outboxStore.ErrNotFound):
		http.Error(w, "outbox entry not found", http.StatusNotFound)
		return
	case errors.Is(err, orchestrators.ErrEntryTerminal):
		http.Error(w, "outbox entry already finished", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		// The attempt itself failed; the entry records the error and stays queued.
		slog.Warn("outbox_retry_failed", "entry_id", r.PathValue("id"), "error", err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "delivered"})
}
