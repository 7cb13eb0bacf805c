package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
)

// AccountStoreForCreateAdmin defines the store interface needed by CreateAdmin.
type AccountStoreForCreateAdmin interface {
	Create(ctx context.Context, a account.Account) error
}

// CreateAdminInput carries input for creating an admin login.
type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
	Role     string // admin or manager; empty means admin
	Branch   string
}

// CreateAdminDeps holds dependencies for CreateAdmin.
type CreateAdminDeps struct {
	Admins     AccountStoreForCreateAdmin
	Recorder   *Recorder
	Now        func() time.Time
	GenerateID func() string
}

// ExecuteCreateAdmin creates an admin or manager login.
// PRE: none
// POST: On success an admin row exists with a bcrypt hash of Password
func ExecuteCreateAdmin(ctx context.Context, input CreateAdminInput, deps CreateAdminDeps) (account.Account, error) {
	now := nowFrom(deps.Now)
	role := input.Role
	if role == "" {
		role = account.RoleAdmin
	}
	acct := account.Account{
		ID:        newID(deps.GenerateID),
		Kind:      account.KindAdmin,
		Email:     account.NormalizeEmail(input.Email),
		Role:      role,
		Branch:    strings.TrimSpace(input.Branch),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var verrs ValidationErrors
	if err := acct.Validate(); err != nil {
		verrs.Add(adminField(err), err.Error())
	}
	if err := acct.SetPassword(input.Password); err != nil {
		verrs.Add("password", err.Error())
	}
	if err := verrs.errOrNil(); err != nil {
		return account.Account{}, err
	}

	if err := deps.Admins.Create(ctx, acct); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return account.Account{}, ValidationErrors{{Field: "email", Message: "That email is already registered"}}
		}
		return account.Account{}, persistenceError("create admin", err)
	}

	deps.Recorder.record(ctx,
		accountEvent(audit.CategoryAccount, audit.ActionAccountCreated, account.KindAdmin, acct.ID, acct.Email, now),
		"role", acct.Role)
	return acct, nil
}

func adminField(err error) string {
	switch {
	case errors.Is(err, account.ErrInvalidRole):
		return "role"
	case errors.Is(err, account.ErrEmptyName):
		return "name"
	default:
		return "email"
	}
}

// AccountStoreForSeedAdmin defines the store interface needed by SeedAdmin.
type AccountStoreForSeedAdmin interface {
	AccountStoreForCreateAdmin
	Count(ctx context.Context) (int, error)
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	Admins     AccountStoreForSeedAdmin
	Recorder   *Recorder
	Now        func() time.Time
	GenerateID func() string
}

// ExecuteSeedAdmin bootstraps the first admin when the admins table is empty.
// PRE: none
// POST: At least one admin exists if credentials were supplied; existing admins are never touched
func ExecuteSeedAdmin(ctx context.Context, input CreateAdminInput, deps SeedAdminDeps) (bool, error) {
	n, err := deps.Admins.Count(ctx)
	if err != nil {
		return false, persistenceError("count admins", err)
	}
	if n > 0 {
		return false, nil
	}
	if input.Email == "" || input.Password == "" {
		slog.Warn("admin_seed_skipped", "reason", "no admin credentials configured")
		return false, nil
	}
	if input.Name == "" {
		input.Name = "Administrator"
	}

	acct, err := ExecuteCreateAdmin(ctx, input, CreateAdminDeps{
		Admins:     deps.Admins,
		Recorder:   deps.Recorder,
		Now:        deps.Now,
		GenerateID: deps.GenerateID,
	})
	if err != nil {
		return false, err
	}
	slog.Info("admin_seeded", "email", acct.Email)
	return true, nil
}
