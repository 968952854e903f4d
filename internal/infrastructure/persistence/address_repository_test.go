package persistence

import (
	"context"
	"testing"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddress(t *testing.T, userID uuid.UUID, name string) *address.Address {
	t.Helper()
	a, err := address.NewAddress(userID, address.Fields{
		Name:    name,
		Phone:   "+91 98765 43210",
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "KA",
		Zip:     "560001",
		Country: "India",
	})
	require.NoError(t, err)
	return a
}

func TestGormAddressRepository_SetDefault(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAddressRepository(newTestDB(t))
	userID, other := uuid.New(), uuid.New()

	home := newAddress(t, userID, "Home")
	home.IsDefault = true
	work := newAddress(t, userID, "Work")
	theirs := newAddress(t, other, "Theirs")
	theirs.IsDefault = true
	for _, a := range []*address.Address{home, work, theirs} {
		require.NoError(t, repo.Save(ctx, a))
	}

	require.NoError(t, repo.SetDefault(ctx, userID, work.ID))

	list, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, work.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	theirsReloaded, err := repo.FindByID(ctx, other, theirs.ID)
	require.NoError(t, err)
	assert.True(t, theirsReloaded.IsDefault)

	assert.ErrorIs(t, repo.SetDefault(ctx, userID, theirs.ID), shared.ErrNotFound)

	count, err := repo.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.ErrorIs(t, repo.Delete(ctx, other, home.ID), shared.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, userID, home.ID))
}
