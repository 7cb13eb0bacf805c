package passwordreset

import (
	"errors"
	"time"

	"gymportal/internal/domain/account"
)

// TTL is how long a reset link stays usable after it is issued.
const TTL = time.Hour

// Domain errors
var (
	ErrTokenExpired = errors.New("reset link has expired")
	ErrTokenUsed    = errors.New("reset link has already been used")
	ErrNotYetValid  = errors.New("reset link is not valid yet")
)

// Request is a single forgot-password request. The plaintext token is only
// ever held by the mail that delivers it; TokenHash is what gets stored.
type Request struct {
	ID        string
	Kind      account.Kind
	Email     string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    time.Time
	CreatedAt time.Time
}

// New builds a request for email with a fresh token and returns the plaintext token alongside it.
// POST: ExpiresAt = now + TTL, TokenHash = HashToken(token)
func New(id string, kind account.Kind, email string, now time.Time) (Request, string, error) {
	token, err := account.GenerateToken()
	if err != nil {
		return Request{}, "", err
	}
	return Request{
		ID:        id,
		Kind:      kind,
		Email:     account.NormalizeEmail(email),
		TokenHash: account.HashToken(token),
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
	}, token, nil
}

// IsExpired returns true if the request is past its expiry.
// INVARIANT: Request fields are not mutated
func (r *Request) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// IsUsed returns true if the request has been consumed or superseded.
func (r *Request) IsUsed() bool {
	return !r.UsedAt.IsZero()
}

// CheckUsable returns nil if the request may be redeemed at now.
func (r *Request) CheckUsable(now time.Time) error {
	if r.IsUsed() {
		return ErrTokenUsed
	}
	if now.Before(r.CreatedAt) {
		return ErrNotYetValid
	}
	if r.IsExpired(now) {
		return ErrTokenExpired
	}
	return nil
}

// Consume marks the request as used.
// PRE: CheckUsable returned nil
// POST: UsedAt is set
func (r *Request) Consume(now time.Time) {
	r.UsedAt = now
}
