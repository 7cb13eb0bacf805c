package orchestrators

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
	"gymportal/internal/domain/outbox"
	"gymportal/internal/domain/passwordreset"
)

// AccountStoreForResetRequest defines the store interface needed to request a reset.
type AccountStoreForResetRequest interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// AccountStoreForResetPassword defines the store interface needed to complete a reset.
type AccountStoreForResetPassword interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ResetStoreForPasswordReset defines the reset store interface needed by both reset operations.
type ResetStoreForPasswordReset interface {
	Save(ctx context.Context, r passwordreset.Request) error
	GetByTokenHash(ctx context.Context, tokenHash string) (passwordreset.Request, error)
	Consume(ctx context.Context, id string, now time.Time) (bool, error)
	InvalidateForEmail(ctx context.Context, kind account.Kind, email string, now time.Time) (int64, error)
}

// OutboxStoreForEnqueue defines the outbox interface needed to queue an email.
type OutboxStoreForEnqueue interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// RequestResetInput carries input for the forgot-password orchestrator.
type RequestResetInput struct {
	Kind  account.Kind
	Email string
}

// RequestResetResult describes the queued request. The token itself only
// travels inside the queued email.
type RequestResetResult struct {
	RequestID string
	OutboxID  string
	ExpiresAt time.Time
}

// RequestResetDeps holds dependencies for RequestPasswordReset.
type RequestResetDeps struct {
	Admins     AccountStoreForResetRequest
	Customers  AccountStoreForResetRequest
	Resets     ResetStoreForPasswordReset
	Outbox     OutboxStoreForEnqueue
	BaseURL    string // e.g. https://portal.example.com
	Recorder   *Recorder
	Now        func() time.Time
	GenerateID func() string
}

// EmailPayload is the outbox payload for ActionTypeEmail entries.
type EmailPayload struct {
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// ExecuteRequestPasswordReset issues a reset token and queues the email carrying it.
// PRE: none
// POST: On success exactly one unconsumed request exists for (kind, email),
// expiring one hour from now, and an email entry is pending in the outbox
func ExecuteRequestPasswordReset(ctx context.Context, input RequestResetInput, deps RequestResetDeps) (RequestResetResult, error) {
	now := nowFrom(deps.Now)
	email := account.NormalizeEmail(input.Email)
	if !account.ValidEmail(email) {
		return RequestResetResult{}, ValidationErrors{{Field: "email", Message: "Enter a valid email address"}}
	}

	var accounts AccountStoreForResetRequest
	switch input.Kind {
	case account.KindAdmin:
		accounts = deps.Admins
	case account.KindCustomer:
		accounts = deps.Customers
	default:
		return RequestResetResult{}, ValidationErrors{{Field: "kind", Message: "Unknown account type"}}
	}

	acct, err := accounts.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		deps.Recorder.record(ctx,
			accountEvent(audit.CategorySecurity, audit.ActionResetRequested, input.Kind, "", email, now).
				WithSeverity(audit.SeverityWarning).
				WithDescription("unknown email"),
			"reason", "not_found")
		return RequestResetResult{}, ErrEmailNotFound
	}
	if err != nil {
		return RequestResetResult{}, persistenceError("load account", err)
	}

	if _, err := deps.Resets.InvalidateForEmail(ctx, input.Kind, email, now); err != nil {
		return RequestResetResult{}, persistenceError("invalidate older resets", err)
	}

	req, token, err := passwordreset.New(newID(deps.GenerateID), input.Kind, email, now)
	if err != nil {
		return RequestResetResult{}, err
	}
	if err := deps.Resets.Save(ctx, req); err != nil {
		return RequestResetResult{}, persistenceError("save reset", err)
	}

	payload, err := resetEmail(acct, ResetLink(deps.BaseURL, input.Kind, token, email))
	if err != nil {
		return RequestResetResult{}, err
	}
	entry, err := enqueueEmail(ctx, deps.Outbox, payload, newID(deps.GenerateID), now)
	if err != nil {
		return RequestResetResult{}, err
	}

	deps.Recorder.record(ctx,
		accountEvent(audit.CategorySecurity, audit.ActionResetRequested, input.Kind, acct.ID, email, now),
		"request_id", req.ID)

	return RequestResetResult{RequestID: req.ID, OutboxID: entry.ID, ExpiresAt: req.ExpiresAt}, nil
}

// ResetLink builds the link mailed to the account owner.
func ResetLink(baseURL string, kind account.Kind, token, email string) string {
	path := "/reset-password"
	if kind == account.KindAdmin {
		path = "/admin/reset-password"
	}
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return strings.TrimRight(baseURL, "/") + path + "?" + q.Encode()
}

const resetEmailMarkdown = `## Reset your password

Hi %s,

We received a request to reset the password on your gym portal account.
Use the link below within the next hour to choose a new one:

[Choose a new password](%s)

If you did not ask for this you can ignore this email. Your password has not changed.
`

func resetEmail(acct account.Account, link string) (EmailPayload, error) {
	text := fmt.Sprintf(resetEmailMarkdown, markdownEscape(acct.DisplayName()), link)
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(text), &html); err != nil {
		return EmailPayload{}, fmt.Errorf("render reset email: %w", err)
	}
	return EmailPayload{
		To:      []string{acct.Email},
		Subject: "Reset your password",
		HTML:    html.String(),
		Text:    text,
		Tags:    map[string]string{"category": "password_reset", "kind": string(acct.Kind)},
	}, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "`", "\\`", "#", `\#`,
)

func markdownEscape(s string) string {
	return markdownEscaper.Replace(s)
}

func enqueueEmail(ctx context.Context, store OutboxStoreForEnqueue, payload EmailPayload, id string, now time.Time) (outbox.Entry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return outbox.Entry{}, fmt.Errorf("encode email payload: %w", err)
	}
	entry := outbox.NewEntry(id, outbox.ActionTypeEmail, string(data), now)
	if err := entry.Validate(); err != nil {
		return outbox.Entry{}, err
	}
	if err := store.Save(ctx, entry); err != nil {
		return outbox.Entry{}, persistenceError("queue email", err)
	}
	return entry, nil
}

// ResetPasswordInput carries input for the reset-password orchestrator.
type ResetPasswordInput struct {
	Token           string
	Email           string
	NewPassword     string
	ConfirmPassword string
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	Admins    AccountStoreForResetPassword
	Customers AccountStoreForResetPassword
	Resets    ResetStoreForPasswordReset
	Recorder  *Recorder
	Now       func() time.Time
}

// ResetPasswordResult identifies the account whose password changed.
type ResetPasswordResult struct {
	AccountID string
	Kind      account.Kind
	Email     string
}

// ExecuteResetPassword redeems a reset token and sets a new password.
// PRE: none; token and email come from an emailed link
// POST: On success the password is replaced, the remember token cleared and
// every request for the email is consumed
// INVARIANT: A token is accepted at most once, and only inside [CreatedAt, ExpiresAt)
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) (ResetPasswordResult, error) {
	now := nowFrom(deps.Now)
	email := account.NormalizeEmail(input.Email)
	if input.Token == "" || email == "" {
		return ResetPasswordResult{}, ErrResetTokenInvalid
	}

	req, err := deps.Resets.GetByTokenHash(ctx, account.HashToken(input.Token))
	if errors.Is(err, sql.ErrNoRows) {
		return ResetPasswordResult{}, ErrResetTokenInvalid
	}
	if err != nil {
		return ResetPasswordResult{}, persistenceError("load reset", err)
	}
	if req.Email != email {
		return ResetPasswordResult{}, ErrResetTokenInvalid
	}
	switch err := req.CheckUsable(now); {
	case errors.Is(err, passwordreset.ErrTokenUsed):
		return ResetPasswordResult{}, ErrResetTokenUsed
	case errors.Is(err, passwordreset.ErrTokenExpired):
		return ResetPasswordResult{}, ErrResetTokenExpired
	case err != nil:
		return ResetPasswordResult{}, ErrResetTokenInvalid
	}

	var verrs ValidationErrors
	validateNewPassword(&verrs, input.NewPassword, input.ConfirmPassword)
	if err := verrs.errOrNil(); err != nil {
		return ResetPasswordResult{}, err
	}

	var accounts AccountStoreForResetPassword
	switch req.Kind {
	case account.KindAdmin:
		accounts = deps.Admins
	case account.KindCustomer:
		accounts = deps.Customers
	default:
		return ResetPasswordResult{}, ErrResetTokenInvalid
	}
	acct, err := accounts.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ResetPasswordResult{}, ErrResetTokenInvalid
	}
	if err != nil {
		return ResetPasswordResult{}, persistenceError("load account", err)
	}

	// Consume before the password changes: a failure below must leave the token spent.
	claimed, err := deps.Resets.Consume(ctx, req.ID, now)
	if err != nil {
		return ResetPasswordResult{}, persistenceError("consume reset", err)
	}
	if !claimed {
		return ResetPasswordResult{}, ErrResetTokenUsed
	}
	if _, err := deps.Resets.InvalidateForEmail(ctx, req.Kind, email, now); err != nil {
		return ResetPasswordResult{}, persistenceError("invalidate resets", err)
	}

	if err := acct.SetPassword(input.NewPassword); err != nil {
		return ResetPasswordResult{}, err
	}
	acct.ClearRememberToken()
	acct.UpdatedAt = now
	if err := accounts.Save(ctx, acct); err != nil {
		return ResetPasswordResult{}, persistenceError("save account", err)
	}

	deps.Recorder.record(ctx,
		accountEvent(audit.CategorySecurity, audit.ActionResetCompleted, req.Kind, acct.ID, acct.Email, now),
		"request_id", req.ID)
	return ResetPasswordResult{AccountID: acct.ID, Kind: req.Kind, Email: acct.Email}, nil
}

// validateNewPassword applies the shared rules for a new password and its confirmation.
func validateNewPassword(verrs *ValidationErrors, password, confirm string) {
	switch {
	case password == "":
		verrs.Add("new_password", "New password is required")
	case len(password) < account.MinPasswordLength:
		verrs.Add("new_password", fmt.Sprintf("Password must be at least %d characters", account.MinPasswordLength))
	}
	if confirm == "" {
		verrs.Add("confirm_password", "Confirm your new password")
	} else if password != confirm {
		verrs.Add("confirm_password", "Passwords do not match")
	}
}

// ResetStoreForPurge defines the store interface needed by PurgeExpiredResets.
type ResetStoreForPurge interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeExpiredResetsDeps holds dependencies for PurgeExpiredResets.
type PurgeExpiredResetsDeps struct {
	Resets ResetStoreForPurge
	// Retention keeps expired rows around this long for support queries.
	Retention time.Duration
	Now       func() time.Time
}

// ExecutePurgeExpiredResets deletes reset requests that expired more than Retention ago.
func ExecutePurgeExpiredResets(ctx context.Context, deps PurgeExpiredResetsDeps) (int64, error) {
	cutoff := nowFrom(deps.Now).Add(-deps.Retention)
	n, err := deps.Resets.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, persistenceError("purge resets", err)
	}
	if n > 0 {
		slog.Info("password_resets_purged", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
