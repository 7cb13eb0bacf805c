package orchestrators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrors(t *testing.T) {
	var verrs ValidationErrors
	require.NoError(t, verrs.errOrNil())

	verrs.Add("email", "Email is required")
	verrs.Add("password", "Password is required")
	err := verrs.errOrNil()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)
	require.False(t, errors.Is(err, ErrAuthentication))
	require.Equal(t, "validation failed: email: Email is required; password: Password is required", err.Error())
	require.Equal(t, []string{"Email is required", "Password is required"}, verrs.Messages())
	require.False(t, verrs.Has("phone"))
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("database is locked")
	err := persistenceError("save account", cause)
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "persistence failed: save account: database is locked", err.Error())
}
