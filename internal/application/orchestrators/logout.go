package orchestrators

import (
	"context"

	"gymportal/internal/domain/audit"
)

// ExecuteLogout revokes the account's remember token and records the logout.
// The caller destroys the session and clears cookies.
// POST: No remember token verifies for the account
func ExecuteLogout(ctx context.Context, input RememberInput, deps RememberDeps) error {
	if err := ExecuteForgetRememberToken(ctx, input, deps); err != nil {
		return err
	}
	e := accountEvent(audit.CategorySecurity, audit.ActionLogout, input.Kind, input.AccountID, "", nowFrom(deps.Now))
	deps.Recorder.record(ctx, e)
	return nil
}
