package repository

import (
	"context"
	"testing"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCarRepository_FindAndAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCarRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	a := seedCar(t, db, owner.ID(), "Chicago", 4500)
	b := seedCar(t, db, owner.ID(), "Denver", 5500)

	found, err := repo.FindByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.Details(), found.Details())
	assert.True(t, found.IsOwnedBy(owner.ID()))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID(), b.ID(), uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	n, err := repo.CountByOwnerID(ctx, owner.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := repo.SumPricePerDay(ctx, owner.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), total)

	empty, err := repo.SumPricePerDay(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestGormCarRepository_FindAvailable(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCarRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	chicago := seedCar(t, db, owner.ID(), "Chicago", 4500)
	hidden := seedCar(t, db, owner.ID(), "Chicago", 4500)
	removed := seedCar(t, db, owner.ID(), "Chicago", 4500)
	seedCar(t, db, owner.ID(), "Denver", 4500)

	require.NoError(t, hidden.ToggleAvailability())
	require.NoError(t, repo.Update(ctx, hidden))
	removed.Remove()
	require.NoError(t, repo.Update(ctx, removed))

	cars, err := repo.FindAvailable(ctx, "Chicago")
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, chicago.ID(), cars[0].ID())

	all, err := repo.FindAvailable(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormCarRepository_SoftDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCarRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	car := seedCar(t, db, owner.ID(), "Chicago", 4500)

	car.Remove()
	require.NoError(t, repo.Update(ctx, car))

	found, err := repo.FindByID(ctx, car.ID())
	require.NoError(t, err)
	assert.Nil(t, found.OwnerID())
	assert.False(t, found.IsAvailable())

	owned, err := repo.FindByOwnerID(ctx, owner.ID())
	require.NoError(t, err)
	assert.Empty(t, owned)
}
