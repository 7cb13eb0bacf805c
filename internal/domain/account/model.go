package account

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
)

// MinPasswordLength is the shortest password accepted at registration, change and reset.
const MinPasswordLength = 8

// bcryptCost is the work factor used for new password hashes.
const bcryptCost = 12

// RememberTokenTTL is how long a remember-me token stays valid server-side.
const RememberTokenTTL = 30 * 24 * time.Hour

// Kind distinguishes the two credential tables.
type Kind string

const (
	KindAdmin    Kind = "admin"
	KindCustomer Kind = "customer"
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCustomer = "customer"
)

// ValidAdminRoles contains the roles an admin row may carry.
var ValidAdminRoles = []string{RoleAdmin, RoleManager}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email address is not valid")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrInvalidKind      = errors.New("account kind must be admin or customer")
	ErrInvalidRole      = errors.New("role must be one of: admin, manager")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrEmailTaken       = errors.New("email already registered")
)

// Account holds state for both admin and customer logins.
type Account struct {
	ID           string
	Kind         Kind
	Email        string
	PasswordHash string
	Role         string
	Branch       string

	// Admin rows carry a single display name.
	Name string

	// Customer profile fields.
	FirstName   string
	LastName    string
	Phone       string
	FitnessGoal string

	RememberTokenHash string
	RememberExpiresAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RememberToken is a freshly issued remember-me credential. Token is the
// plaintext value handed to the client; only its hash is stored.
type RememberToken struct {
	AccountID string
	Kind      Kind
	Token     string
	ExpiresAt time.Time
}

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLength || strings.ContainsAny(email, " \t\r\n<>\"") {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !ValidEmail(a.Email) {
		return ErrInvalidEmail
	}
	switch a.Kind {
	case KindAdmin:
		if !isValidAdminRole(a.Role) {
			return ErrInvalidRole
		}
		if strings.TrimSpace(a.Name) == "" {
			return ErrEmptyName
		}
	case KindCustomer:
		if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
			return ErrEmptyName
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

// DisplayName returns the name shown in page headers.
// INVARIANT: Account fields are not mutated
func (a *Account) DisplayName() string {
	if a.Kind == KindAdmin {
		return a.Name
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IssueRememberToken generates a new remember-me token and stores its hash,
// replacing whatever token was there before.
// POST: RememberTokenHash and RememberExpiresAt describe the returned token
func (a *Account) IssueRememberToken(now time.Time) (RememberToken, error) {
	token, err := GenerateToken()
	if err != nil {
		return RememberToken{}, err
	}
	a.RememberTokenHash = HashToken(token)
	a.RememberExpiresAt = now.Add(RememberTokenTTL)
	return RememberToken{
		AccountID: a.ID,
		Kind:      a.Kind,
		Token:     token,
		ExpiresAt: a.RememberExpiresAt,
	}, nil
}

// MatchesRememberToken reports whether token is the current, unexpired remember token.
// INVARIANT: Account fields are not mutated
func (a *Account) MatchesRememberToken(token string) bool {
	if a.RememberTokenHash == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.RememberTokenHash), []byte(HashToken(token))) == 1
}

// RememberTokenExpired reports whether the stored remember token is past its expiry.
func (a *Account) RememberTokenExpired(now time.Time) bool {
	return a.RememberExpiresAt.IsZero() || !now.Before(a.RememberExpiresAt)
}

// ClearRememberToken drops the stored remember token.
// POST: no remember token will verify for this account
func (a *Account) ClearRememberToken() {
	a.RememberTokenHash = ""
	a.RememberExpiresAt = time.Time{}
}

// IsAdmin returns true if the account is an admin login.
func (a *Account) IsAdmin() bool {
	return a.Kind == KindAdmin
}

// GenerateToken returns 32 random bytes hex-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 of a bearer token, the form tokens are persisted in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isValidAdminRole(role string) bool {
	for _, r := range ValidAdminRoles {
		if r == role {
			return true
		}
	}
	return false
}
