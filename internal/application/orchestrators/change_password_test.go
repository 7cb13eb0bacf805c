package orchestrators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

func TestExecuteChangePassword(t *testing.T) {
	store := newMockAccountStore(mustCustomer("c-1", "jane@x.com", "password1", "Downtown Fitness"))
	auditStore := &mockAuditStore{}
	ctx := context.Background()

	remember, err := ExecuteIssueRememberToken(ctx, RememberInput{Kind: account.KindCustomer, AccountID: "c-1"},
		RememberDeps{Accounts: store, Now: fixedNow})
	require.NoError(t, err)

	err = ExecuteChangePassword(ctx, ChangePasswordInput{
		Kind:            account.KindCustomer,
		AccountID:       "c-1",
		CurrentPassword: "password1",
		NewPassword:     "password2",
		ConfirmPassword: "password2",
	}, ChangePasswordDeps{Accounts: store, Recorder: &Recorder{Audit: auditStore}, Now: fixedNow})
	require.NoError(t, err)

	loginDeps := LoginDeps{Accounts: store, Now: fixedNow}
	_, err = ExecuteLogin(ctx, LoginInput{Kind: account.KindCustomer, Email: "jane@x.com", Password: "password2"}, loginDeps)
	require.NoError(t, err)
	_, err = ExecuteLogin(ctx, LoginInput{Kind: account.KindCustomer, Email: "jane@x.com", Password: "password1"}, loginDeps)
	require.ErrorIs(t, err, ErrInvalidPassword)

	stored := store.get("c-1")
	require.False(t, stored.MatchesRememberToken(remember.Token))
	require.Equal(t, audit.ActionPasswordChange, auditStore.actions()[0])
}

func TestExecuteChangePassword_Rejections(t *testing.T) {
	store := newMockAccountStore(mustAdmin("a-1", "boss@gym.test", "adminpass1", "Downtown Fitness"))
	deps := ChangePasswordDeps{Accounts: store, Now: fixedNow}
	ctx := context.Background()

	tests := []struct {
		name      string
		input     ChangePasswordInput
		wantErr   error
		wantField string
	}{
		{"wrong current", ChangePasswordInput{AccountID: "a-1", CurrentPassword: "nope-nope", NewPassword: "freshpass1", ConfirmPassword: "freshpass1"}, ErrValidation, "current_password"},
		{"short new", ChangePasswordInput{AccountID: "a-1", CurrentPassword: "adminpass1", NewPassword: "tiny", ConfirmPassword: "tiny"}, ErrValidation, "new_password"},
		{"mismatch", ChangePasswordInput{AccountID: "a-1", CurrentPassword: "adminpass1", NewPassword: "freshpass1", ConfirmPassword: "freshpass2"}, ErrValidation, "confirm_password"},
		{"no session", ChangePasswordInput{CurrentPassword: "adminpass1", NewPassword: "freshpass1", ConfirmPassword: "freshpass1"}, ErrAccountNotFound, ""},
		{"deleted account", ChangePasswordInput{AccountID: "a-9", CurrentPassword: "adminpass1", NewPassword: "freshpass1", ConfirmPassword: "freshpass1"}, ErrAccountNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Kind = account.KindAdmin
			err := ExecuteChangePassword(ctx, tt.input, deps)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantField != "" {
				var verrs ValidationErrors
				require.ErrorAs(t, err, &verrs)
				require.True(t, verrs.Has(tt.wantField))
			}
		})
	}

	acct := store.get("a-1")
	require.NoError(t, acct.CheckPassword("adminpass1"), "rejected changes leave the password alone")
}
