package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category represents the type of audit event.
type Category string

const (
	CategoryAccount  Category = "account"
	CategorySecurity Category = "security"
)

// Action represents the action that occurred.
type Action string

const (
	ActionRegister        Action = "register"
	ActionLogin           Action = "login"
	ActionLoginFailed     Action = "login_failed"
	ActionRememberLogin   Action = "remember_login"
	ActionLogout          Action = "logout"
	ActionPasswordChange  Action = "password_change"
	ActionResetRequested  Action = "reset_requested"
	ActionResetCompleted  Action = "reset_completed"
	ActionAccountCreated  Action = "account_created"
	ActionRememberRevoked Action = "remember_revoked"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Event represents a single audit log entry.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Category    Category  `json:"category"`
	Action      Action    `json:"action"`
	Severity    Severity  `json:"severity"`
	AccountKind string    `json:"account_kind"`
	AccountID   string    `json:"account_id"`
	Email       string    `json:"email"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
}

// NewEvent creates a new audit event stamped with now.
// PRE: action is non-empty
// POST: Returns an Event at SeverityInfo
func NewEvent(category Category, action Action, now time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: now,
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithAccount sets the subject account of the event.
func (e Event) WithAccount(kind, id, email string) Event {
	e.AccountKind = kind
	e.AccountID = id
	e.Email = email
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent from HTTP request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

type requestInfoKey struct{}

type requestInfo struct {
	ip        string
	userAgent string
}

// ContextWithRequest stashes the caller's address and user agent for events recorded further down.
func ContextWithRequest(ctx context.Context, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ip: ipAddress, userAgent: userAgent})
}

// FromContext copies request details stored by ContextWithRequest onto the event.
func (e Event) FromContext(ctx context.Context) Event {
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		return e.WithRequest(info.ip, info.userAgent)
	}
	return e
}
