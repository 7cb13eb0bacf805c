package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

// AccountStoreForRemember defines the store interface needed by the remember-me operations.
type AccountStoreForRemember interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// accountSaver is the one method issueRememberToken needs.
type accountSaver interface {
	Save(ctx context.Context, a account.Account) error
}

// RememberInput identifies the account a token is issued for or revoked from.
type RememberInput struct {
	Kind      account.Kind
	AccountID string
}

// RememberLoginInput carries the two values read back from the remember cookies.
type RememberLoginInput struct {
	Kind      account.Kind
	AccountID string
	Token     string
}

// RememberDeps holds dependencies for the remember-me operations.
// Accounts must be the store for the input's Kind.
type RememberDeps struct {
	Accounts AccountStoreForRemember
	Recorder *Recorder
	Now      func() time.Time
}

// ExecuteIssueRememberToken generates a new remember-me token for an account.
// PRE: AccountID identifies an existing account of Kind
// POST: Only the returned token verifies for the account from now on
func ExecuteIssueRememberToken(ctx context.Context, input RememberInput, deps RememberDeps) (account.RememberToken, error) {
	acct, err := deps.Accounts.GetByID(ctx, input.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return account.RememberToken{}, ErrAccountNotFound
	}
	if err != nil {
		return account.RememberToken{}, persistenceError("load account", err)
	}
	return issueRememberToken(ctx, &acct, deps.Accounts, nowFrom(deps.Now))
}

func issueRememberToken(ctx context.Context, acct *account.Account, store accountSaver, now time.Time) (account.RememberToken, error) {
	token, err := acct.IssueRememberToken(now)
	if err != nil {
		return account.RememberToken{}, err
	}
	if err := store.Save(ctx, *acct); err != nil {
		return account.RememberToken{}, persistenceError("save remember token", err)
	}
	return token, nil
}

// ExecuteRememberLogin re-authenticates a visitor from their remember cookies.
// PRE: none; cookie values are untrusted
// POST: On success returns the same identity a password login would
// INVARIANT: An expired token is cleared server-side before the error returns
func ExecuteRememberLogin(ctx context.Context, input RememberLoginInput, deps RememberDeps) (LoginResult, error) {
	now := nowFrom(deps.Now)
	if input.AccountID == "" || input.Token == "" {
		return LoginResult{}, ErrRememberTokenInvalid
	}

	acct, err := deps.Accounts.GetByID(ctx, input.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return LoginResult{}, ErrRememberTokenInvalid
	}
	if err != nil {
		return LoginResult{}, persistenceError("load account", err)
	}

	if !acct.MatchesRememberToken(input.Token) {
		e := accountEvent(audit.CategorySecurity, audit.ActionLoginFailed, input.Kind, acct.ID, acct.Email, now).
			WithSeverity(audit.SeverityWarning).
			WithDescription("remember token mismatch")
		deps.Recorder.record(ctx, e, "reason", "remember_mismatch")
		return LoginResult{}, ErrRememberTokenInvalid
	}

	if acct.RememberTokenExpired(now) {
		acct.ClearRememberToken()
		if err := deps.Accounts.Save(ctx, acct); err != nil {
			return LoginResult{}, persistenceError("clear remember token", err)
		}
		return LoginResult{}, ErrRememberTokenExpired
	}

	e := accountEvent(audit.CategorySecurity, audit.ActionRememberLogin, input.Kind, acct.ID, acct.Email, now)
	deps.Recorder.record(ctx, e)

	return LoginResult{
		AccountID: acct.ID,
		Kind:      input.Kind,
		Name:      acct.DisplayName(),
		Email:     acct.Email,
		Role:      acct.Role,
		Branch:    acct.Branch,
	}, nil
}

// ExecuteForgetRememberToken clears the stored remember token.
// POST: No remember token verifies for the account; unknown accounts are a no-op
func ExecuteForgetRememberToken(ctx context.Context, input RememberInput, deps RememberDeps) error {
	if input.AccountID == "" {
		return nil
	}
	acct, err := deps.Accounts.GetByID(ctx, input.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return persistenceError("load account", err)
	}
	if acct.RememberTokenHash == "" {
		return nil
	}
	acct.ClearRememberToken()
	if err := deps.Accounts.Save(ctx, acct); err != nil {
		return persistenceError("clear remember token", err)
	}

	e := accountEvent(audit.CategorySecurity, audit.ActionRememberRevoked, input.Kind, acct.ID, acct.Email, nowFrom(deps.Now))
	deps.Recorder.record(ctx, e)
	return nil
}
