package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
	"gymportal/internal/domain/branch"
)

// AccountStoreForRegister defines the store interface needed by RegisterCustomer.
type AccountStoreForRegister interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Create(ctx context.Context, a account.Account) error
}

// BranchStoreForRegister defines the branch lookup needed by RegisterCustomer.
type BranchStoreForRegister interface {
	GetByName(ctx context.Context, name string) (branch.Branch, error)
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Branch          string
	FitnessGoal     string
}

// RegisterResult carries the identity of the new customer.
type RegisterResult struct {
	AccountID string
	Name      string
	Email     string
	Branch    string
}

// RegisterDeps holds dependencies for RegisterCustomer.
type RegisterDeps struct {
	Customers  AccountStoreForRegister
	Branches   BranchStoreForRegister
	Recorder   *Recorder
	Now        func() time.Time
	GenerateID func() string
}

// ExecuteRegisterCustomer validates the form and creates a customer.
// PRE: none
// POST: On success exactly one new customer row exists for the email
// INVARIANT: Any validation failure creates no row; all violations are returned together
func ExecuteRegisterCustomer(ctx context.Context, input RegisterInput, deps RegisterDeps) (RegisterResult, error) {
	now := nowFrom(deps.Now)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	phone := strings.TrimSpace(input.Phone)
	email := account.NormalizeEmail(input.Email)
	branchName := strings.TrimSpace(input.Branch)

	var verrs ValidationErrors
	requireName(&verrs, "first_name", "First name", firstName)
	requireName(&verrs, "last_name", "Last name", lastName)

	switch {
	case email == "":
		verrs.Add("email", "Email is required")
	case !account.ValidEmail(email):
		verrs.Add("email", "Enter a valid email address")
	default:
		_, err := deps.Customers.GetByEmail(ctx, email)
		switch {
		case err == nil:
			verrs.Add("email", "That email is already registered")
		case !errors.Is(err, sql.ErrNoRows):
			return RegisterResult{}, persistenceError("check email", err)
		}
	}

	if phone == "" {
		verrs.Add("phone", "Phone number is required")
	}

	switch {
	case input.Password == "":
		verrs.Add("password", "Password is required")
	case len(input.Password) < account.MinPasswordLength:
		verrs.Add("password", fmt.Sprintf("Password must be at least %d characters", account.MinPasswordLength))
	}
	if input.Password != input.ConfirmPassword {
		verrs.Add("confirm_password", "Passwords do not match")
	}

	if branchName == "" {
		verrs.Add("branch", "Select a branch")
	} else {
		_, err := deps.Branches.GetByName(ctx, branchName)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			verrs.Add("branch", "Select a valid branch")
		case err != nil:
			return RegisterResult{}, persistenceError("check branch", err)
		}
	}

	if err := verrs.errOrNil(); err != nil {
		return RegisterResult{}, err
	}

	acct := account.Account{
		ID:          newID(deps.GenerateID),
		Kind:        account.KindCustomer,
		Email:       email,
		Role:        account.RoleCustomer,
		Branch:      branchName,
		FirstName:   firstName,
		LastName:    lastName,
		Phone:       phone,
		FitnessGoal: strings.TrimSpace(input.FitnessGoal),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := acct.Validate(); err != nil {
		return RegisterResult{}, ValidationErrors{{Field: "email", Message: err.Error()}}
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return RegisterResult{}, err
	}

	if err := deps.Customers.Create(ctx, acct); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return RegisterResult{}, ValidationErrors{{Field: "email", Message: "That email is already registered"}}
		}
		return RegisterResult{}, persistenceError("create customer", err)
	}

	deps.Recorder.record(ctx,
		accountEvent(audit.CategoryAccount, audit.ActionRegister, account.KindCustomer, acct.ID, acct.Email, now),
		"branch", acct.Branch)

	return RegisterResult{
		AccountID: acct.ID,
		Name:      acct.DisplayName(),
		Email:     acct.Email,
		Branch:    acct.Branch,
	}, nil
}

func requireName(verrs *ValidationErrors, field, label, value string) {
	switch {
	case value == "":
		verrs.Add(field, label+" is required")
	case len(value) > account.MaxNameLength:
		verrs.Add(field, fmt.Sprintf("%s cannot exceed %d characters", label, account.MaxNameLength))
	}
}
