package branch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	store "gymportal/internal/adapters/storage/branch"
	"gymportal/internal/adapters/storage/storagetest"
	domain "gymportal/internal/domain/branch"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLiteStore(storagetest.Open(t))

	for _, b := range domain.Defaults {
		require.NoError(t, s.Save(ctx, b))
	}
	require.NoError(t, s.Save(ctx, domain.Branch{Name: "Uptown Fitness", Location: "moved"}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(domain.Defaults), n)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Downtown Fitness", list[0].Name)
	require.True(t, domain.Contains(list, "Riverside Fitness"))

	got, err := s.GetByName(ctx, "Uptown Fitness")
	require.NoError(t, err)
	require.Equal(t, "moved", got.Location)

	_, err = s.GetByName(ctx, "Nowhere Gym")
	require.ErrorIs(t, err, store.ErrNotFound)
}
