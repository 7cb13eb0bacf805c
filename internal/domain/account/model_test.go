package account_test

import (
	"testing"
	"time"

	"gymportal/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{
			name: "valid admin account",
			account: account.Account{
				Kind:  account.KindAdmin,
				Email: "admin@gym.example",
				Name:  "Head Office",
				Role:  account.RoleAdmin,
			},
		},
		{
			name: "valid manager account",
			account: account.Account{
				Kind:  account.KindAdmin,
				Email: "manager@gym.example",
				Name:  "Branch Manager",
				Role:  account.RoleManager,
			},
		},
		{
			name: "valid customer account",
			account: account.Account{
				Kind:      account.KindCustomer,
				Email:     "jane@x.com",
				FirstName: "Jane",
				LastName:  "Doe",
				Role:      account.RoleCustomer,
			},
		},
		{
			name:    "empty email",
			account: account.Account{Kind: account.KindAdmin, Name: "A", Role: account.RoleAdmin},
			wantErr: account.ErrEmptyEmail,
		},
		{
			name:    "invalid email no at sign",
			account: account.Account{Kind: account.KindAdmin, Email: "not-an-email", Name: "A", Role: account.RoleAdmin},
			wantErr: account.ErrInvalidEmail,
		},
		{
			name:    "invalid admin role",
			account: account.Account{Kind: account.KindAdmin, Email: "a@gym.example", Name: "A", Role: "superadmin"},
			wantErr: account.ErrInvalidRole,
		},
		{
			name:    "customer missing last name",
			account: account.Account{Kind: account.KindCustomer, Email: "a@gym.example", FirstName: "A"},
			wantErr: account.ErrEmptyName,
		},
		{
			name:    "unknown kind",
			account: account.Account{Kind: "staff", Email: "a@gym.example"},
			wantErr: account.ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if err != tt.wantErr {
				t.Errorf("Account.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"jane", false},
		{"jane@", false},
		{"@x.com", false},
		{"jane@localhost", false},
		{"jane doe@x.com", false},
		{"jane@x.", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := account.ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := account.NormalizeEmail("  Jane@X.com "); got != "jane@x.com" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "jane@x.com")
	}
}

// TestAccount_SetPassword tests the SetPassword method.
func TestAccount_SetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password1", false},
		{"exactly 8 chars", "12345678", false},
		{"empty password", "", true},
		{"too short", "short", true},
		{"7 chars", "1234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{}
			err := a.SetPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && a.PasswordHash == "" {
				t.Error("SetPassword() should set PasswordHash")
			}
			if err == nil && a.PasswordHash == tt.password {
				t.Error("SetPassword() should hash the password, not store plaintext")
			}
		})
	}
}

// TestAccount_CheckPassword tests the CheckPassword method.
func TestAccount_CheckPassword(t *testing.T) {
	a := &account.Account{}
	if err := a.SetPassword("password1"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"correct password", "password1", false},
		{"wrong password", "wrongpass", true},
		{"empty password", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.CheckPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccount_CheckPassword_NoHash(t *testing.T) {
	a := &account.Account{}
	if err := a.CheckPassword("anypassword"); err == nil {
		t.Error("CheckPassword() should fail when no hash is set")
	}
}

func TestAccount_DisplayName(t *testing.T) {
	admin := account.Account{Kind: account.KindAdmin, Name: "Head Office"}
	if got := admin.DisplayName(); got != "Head Office" {
		t.Errorf("admin DisplayName() = %q", got)
	}
	customer := account.Account{Kind: account.KindCustomer, FirstName: "Jane", LastName: "Doe"}
	if got := customer.DisplayName(); got != "Jane Doe" {
		t.Errorf("customer DisplayName() = %q", got)
	}
}

func TestAccount_RememberToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &account.Account{ID: "c-1", Kind: account.KindCustomer}

	first, err := a.IssueRememberToken(now)
	if err != nil {
		t.Fatalf("IssueRememberToken() failed: %v", err)
	}
	if len(first.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(first.Token))
	}
	if a.RememberTokenHash == first.Token {
		t.Error("plaintext token must not be stored")
	}
	if !first.ExpiresAt.Equal(now.Add(account.RememberTokenTTL)) {
		t.Errorf("ExpiresAt = %v", first.ExpiresAt)
	}
	if !a.MatchesRememberToken(first.Token) {
		t.Error("freshly issued token should match")
	}

	second, err := a.IssueRememberToken(now)
	if err != nil {
		t.Fatalf("IssueRememberToken() failed: %v", err)
	}
	if a.MatchesRememberToken(first.Token) {
		t.Error("previous token should no longer match after re-issue")
	}
	if !a.MatchesRememberToken(second.Token) {
		t.Error("latest token should match")
	}

	if a.RememberTokenExpired(now.Add(29 * 24 * time.Hour)) {
		t.Error("token should be valid inside 30 days")
	}
	if !a.RememberTokenExpired(now.Add(account.RememberTokenTTL)) {
		t.Error("token should be expired at 30 days")
	}

	a.ClearRememberToken()
	if a.MatchesRememberToken(second.Token) {
		t.Error("cleared token should not match")
	}
	if !a.RememberTokenExpired(now) {
		t.Error("cleared token should report expired")
	}
}
