package orchestrators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

func TestExecuteRememberLogin(t *testing.T) {
	store := newMockAccountStore(mustCustomer("c-1", "jane@x.com", "password1", "Downtown Fitness"))
	deps := RememberDeps{Accounts: store, Now: fixedNow}
	ctx := context.Background()

	token, err := ExecuteIssueRememberToken(ctx, RememberInput{Kind: account.KindCustomer, AccountID: "c-1"}, deps)
	require.NoError(t, err)

	res, err := ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindCustomer, AccountID: "c-1", Token: token.Token}, deps)
	require.NoError(t, err)
	require.Equal(t, "c-1", res.AccountID)
	require.Equal(t, "Downtown Fitness", res.Branch)

	_, err = ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindCustomer, AccountID: "c-1", Token: "forged"}, deps)
	require.ErrorIs(t, err, ErrRememberTokenInvalid)

	_, err = ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindCustomer, AccountID: "c-404", Token: token.Token}, deps)
	require.ErrorIs(t, err, ErrRememberTokenInvalid)

	_, err = ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindCustomer}, deps)
	require.ErrorIs(t, err, ErrRememberTokenInvalid)
}

func TestExecuteRememberLogin_ExpiredTokenIsCleared(t *testing.T) {
	store := newMockAccountStore(mustCustomer("c-1", "jane@x.com", "password1", "Downtown Fitness"))
	ctx := context.Background()

	token, err := ExecuteIssueRememberToken(ctx, RememberInput{Kind: account.KindCustomer, AccountID: "c-1"},
		RememberDeps{Accounts: store, Now: fixedNow})
	require.NoError(t, err)

	later := func() time.Time { return testNow.Add(account.RememberTokenTTL) }
	_, err = ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindCustomer, AccountID: "c-1", Token: token.Token},
		RememberDeps{Accounts: store, Now: later})
	require.ErrorIs(t, err, ErrRememberTokenExpired)
	require.Empty(t, store.get("c-1").RememberTokenHash)

	_, err = ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindCustomer, AccountID: "c-1", Token: token.Token},
		RememberDeps{Accounts: store, Now: fixedNow})
	require.ErrorIs(t, err, ErrRememberTokenInvalid)
}

func TestExecuteIssueRememberToken_UnknownAccount(t *testing.T) {
	_, err := ExecuteIssueRememberToken(context.Background(), RememberInput{Kind: account.KindAdmin, AccountID: "nope"},
		RememberDeps{Accounts: newMockAccountStore(), Now: fixedNow})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestExecuteLogout_RevokesRememberToken(t *testing.T) {
	store := newMockAccountStore(mustAdmin("a-1", "boss@gym.test", "adminpass1", "Downtown Fitness"))
	auditStore := &mockAuditStore{}
	deps := RememberDeps{Accounts: store, Recorder: &Recorder{Audit: auditStore}, Now: fixedNow}
	ctx := context.Background()
	in := RememberInput{Kind: account.KindAdmin, AccountID: "a-1"}

	token, err := ExecuteIssueRememberToken(ctx, in, deps)
	require.NoError(t, err)

	require.NoError(t, ExecuteLogout(ctx, in, deps))
	_, err = ExecuteRememberLogin(ctx, RememberLoginInput{Kind: account.KindAdmin, AccountID: "a-1", Token: token.Token}, deps)
	require.ErrorIs(t, err, ErrRememberTokenInvalid)
	require.Equal(t, []audit.Action{audit.ActionRememberRevoked, audit.ActionLogout, audit.ActionLoginFailed}, auditStore.actions())

	// Logging out again, or for an unknown account, is harmless.
	require.NoError(t, ExecuteLogout(ctx, in, deps))
	require.NoError(t, ExecuteForgetRememberToken(ctx, RememberInput{Kind: account.KindAdmin, AccountID: "ghost"}, deps))
}
