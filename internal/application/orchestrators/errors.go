package orchestrators

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every error an orchestrator returns matches exactly one
// of these with errors.Is, which is what the HTTP layer switches on.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("authentication failed")
	ErrPersistence    = errors.New("persistence failed")
)

// Specific failures, each wrapping its category.
var (
	ErrEmailNotFound   = fmt.Errorf("%w: no account with that email", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)

	ErrInvalidPassword = fmt.Errorf("%w: invalid password", ErrAuthentication)
	ErrBranchMismatch  = fmt.Errorf("%w: account is registered at a different branch", ErrAuthentication)

	ErrRememberTokenInvalid = fmt.Errorf("%w: remember token not recognised", ErrAuthentication)
	ErrRememberTokenExpired = fmt.Errorf("%w: remember token expired", ErrAuthentication)

	ErrResetTokenInvalid = fmt.Errorf("%w: reset link is not valid", ErrAuthentication)
	ErrResetTokenUsed    = fmt.Errorf("%w: reset link has already been used", ErrAuthentication)
	ErrResetTokenExpired = fmt.Errorf("%w: reset link has expired", ErrAuthentication)
)

// FieldError is one violated rule on one form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects every violated rule so a form can show them together.
// It matches ErrValidation under errors.Is.
type ValidationErrors []FieldError

// Add appends a violation.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Has reports whether field has at least one violation.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Messages returns the messages in the order they were added.
func (v ValidationErrors) Messages() []string {
	out := make([]string, len(v))
	for i, fe := range v {
		out[i] = fe.Message
	}
	return out
}

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationErrors.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// errOrNil returns v as an error only when it holds violations.
func (v ValidationErrors) errOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
