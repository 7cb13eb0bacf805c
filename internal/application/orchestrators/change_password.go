package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	Kind            account.Kind
	AccountID       string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
// Accounts must be the store for input.Kind.
type ChangePasswordDeps struct {
	Accounts AccountStoreForChangePassword
	Recorder *Recorder
	Now      func() time.Time
}

// ExecuteChangePassword validates the current password and replaces it.
// PRE: AccountID comes from an authenticated session
// POST: The new password verifies, the old one does not, and the remember token is cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	now := nowFrom(deps.Now)
	if input.AccountID == "" {
		return ErrAccountNotFound
	}

	acct, err := deps.Accounts.GetByID(ctx, input.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAccountNotFound
	}
	if err != nil {
		return persistenceError("load account", err)
	}

	var verrs ValidationErrors
	if input.CurrentPassword == "" {
		verrs.Add("current_password", "Current password is required")
	} else if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		verrs.Add("current_password", "Current password is incorrect")
	}
	validateNewPassword(&verrs, input.NewPassword, input.ConfirmPassword)
	if err := verrs.errOrNil(); err != nil {
		return err
	}

	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	acct.ClearRememberToken()
	acct.UpdatedAt = now
	if err := deps.Accounts.Save(ctx, acct); err != nil {
		return persistenceError("save account", err)
	}

	deps.Recorder.record(ctx,
		accountEvent(audit.CategorySecurity, audit.ActionPasswordChange, input.Kind, acct.ID, acct.Email, now))
	return nil
}
