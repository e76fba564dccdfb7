package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market/internal/catalog/adapters"
	"go-market/pkg/db"
	"go-market/pkg/db/dbtest"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

func newUseCase(t *testing.T) *CatalogUseCase {
	t.Helper()
	conn := dbtest.Open(t)
	items := adapters.NewGormItemRepository(conn)
	options := adapters.NewGormOptionsRepository(conn)
	delivery := adapters.NewGormDeliveryRepository(conn)
	require.NoError(t, db.MigrateAll(items, options, delivery))
	return NewCatalogUseCase(items, options, delivery, logger.NewNop())
}

func TestCreateItem_Success(t *testing.T) {
	uc := newUseCase(t)
	owner := uuid.New()

	item, err := uc.CreateItem(context.Background(), CreateItemInput{
		OwnerProfileID: owner,
		Name:           "Bread",
		Price:          decimal.RequireFromString("3.50"),
		UseInStock:     true,
		InStock:        20,
	})
	require.NoError(t, err)
	assert.True(t, item.Active)

	listed, err := uc.ListItemsByOwner(context.Background(), owner, uuid.New(), Page{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, item.ID, listed[0].ID)
}

func TestCreateItem_InvalidPrice(t *testing.T) {
	uc := newUseCase(t)

	_, err := uc.CreateItem(context.Background(), CreateItemInput{
		OwnerProfileID: uuid.New(),
		Name:           "Bread",
		Price:          decimal.NewFromInt(-1),
	})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestSetItemActive_OwnerOnly(t *testing.T) {
	uc := newUseCase(t)
	owner := uuid.New()
	item, err := uc.CreateItem(context.Background(), CreateItemInput{
		OwnerProfileID: owner,
		Name:           "Bread",
		Price:          decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	_, err = uc.SetItemActive(context.Background(), uuid.New(), item.ID, false)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	updated, err := uc.SetItemActive(context.Background(), owner, item.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	// hidden from other profiles, visible to the owner
	others, err := uc.ListItemsByOwner(context.Background(), owner, uuid.New(), Page{})
	require.NoError(t, err)
	assert.Empty(t, others)

	mine, err := uc.ListItemsByOwner(context.Background(), owner, owner, Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestDeliverySetup(t *testing.T) {
	uc := newUseCase(t)
	owner := uuid.New()

	_, err := uc.CreateDeliveryEvent(context.Background(), owner, "", time.Now())
	assert.True(t, errors.Is(err, errors.CodeValidation))

	event, err := uc.CreateDeliveryEvent(context.Background(), owner, "Saturday market", time.Now().Add(48*time.Hour))
	require.NoError(t, err)

	loc, err := uc.CreatePickupLocation(context.Background(), owner, "Farm", "1 Lane")
	require.NoError(t, err)

	events, err := uc.ListDeliveryEvents(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)

	locations, err := uc.ListPickupLocations(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, loc.ID, locations[0].ID)
}
