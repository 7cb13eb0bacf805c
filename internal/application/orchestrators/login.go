package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Kind     account.Kind
	Email    string
	Password string
	Branch   string // optional; customers must match it, admins keep it as a preference
	Remember bool
}

// LoginResult carries the identity a session is built from.
type LoginResult struct {
	AccountID string
	Kind      account.Kind
	Name      string
	Email     string
	Role      string
	Branch    string
	// Remember is set when a remember-me token was issued.
	Remember *account.RememberToken
}

// LoginDeps holds dependencies for Login.
// Accounts must be the store for input.Kind.
type LoginDeps struct {
	Accounts AccountStoreForLogin
	Recorder *Recorder
	Now      func() time.Time
}

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: deps.Accounts serves input.Kind
// POST: On success the result is bound to the account's ID; with Remember set a
// fresh token has replaced any earlier one
// INVARIANT: A failed login issues no token and mutates nothing
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	now := nowFrom(deps.Now)
	email := account.NormalizeEmail(input.Email)

	var verrs ValidationErrors
	if input.Kind != account.KindAdmin && input.Kind != account.KindCustomer {
		verrs.Add("kind", "Unknown account type")
	}
	if !account.ValidEmail(email) {
		verrs.Add("email", "Enter a valid email address")
	}
	if input.Password == "" {
		verrs.Add("password", "Password is required")
	}
	if err := verrs.errOrNil(); err != nil {
		return LoginResult{}, err
	}

	failed := func(reason string, id string) {
		e := accountEvent(audit.CategorySecurity, audit.ActionLoginFailed, input.Kind, id, email, now).
			WithSeverity(audit.SeverityWarning).
			WithDescription(reason)
		deps.Recorder.record(ctx, e, "reason", reason)
	}

	acct, err := deps.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		failed("not_found", "")
		return LoginResult{}, ErrEmailNotFound
	}
	if err != nil {
		return LoginResult{}, persistenceError("load account", err)
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		failed("wrong_password", acct.ID)
		return LoginResult{}, ErrInvalidPassword
	}

	branch := acct.Branch
	if input.Branch != "" {
		switch {
		case input.Kind == account.KindCustomer && input.Branch != acct.Branch:
			failed("branch_mismatch", acct.ID)
			return LoginResult{}, ErrBranchMismatch
		case input.Kind == account.KindAdmin:
			branch = input.Branch
		}
	}

	result := LoginResult{
		AccountID: acct.ID,
		Kind:      input.Kind,
		Name:      acct.DisplayName(),
		Email:     acct.Email,
		Role:      acct.Role,
		Branch:    branch,
	}

	if input.Remember {
		token, err := issueRememberToken(ctx, &acct, deps.Accounts, now)
		if err != nil {
			return LoginResult{}, err
		}
		result.Remember = &token
	}

	e := accountEvent(audit.CategorySecurity, audit.ActionLogin, input.Kind, acct.ID, acct.Email, now)
	deps.Recorder.record(ctx, e, "branch", branch, "remember", input.Remember)
	return result, nil
}
