package adapters

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market/internal/catalog/domain"
	"go-market/pkg/db/dbtest"
	"go-market/pkg/errors"
)

func newItemRepo(t *testing.T) *GormItemRepository {
	t.Helper()
	repo := NewGormItemRepository(dbtest.Open(t))
	require.NoError(t, repo.Migrate())
	return repo
}

func seedItem(t *testing.T, repo *GormItemRepository, useInStock bool, inStock int) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(uuid.New(), "Honey jar", "", decimal.NewFromInt(100), []domain.DiscountBracket{
		{MinimumQuantity: 10, Price: decimal.NewFromInt(80)},
	}, useInStock, inStock, &domain.ItemOptions{
		AcceptedPaymentOptions: []domain.PaymentOption{{Kind: "card"}},
		BaseCurrency:           "USD",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestItemRepository_RoundTrip(t *testing.T) {
	repo := newItemRepo(t)
	item := seedItem(t, repo, true, 5)

	got, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)

	assert.Equal(t, item.Name, got.Name)
	assert.True(t, item.Price.Equal(got.Price))
	require.Len(t, got.DiscountBrackets, 1)
	assert.Equal(t, 10, got.DiscountBrackets[0].MinimumQuantity)
	require.NotNil(t, got.Options)
	assert.Equal(t, "USD", got.Options.BaseCurrency)
}

func TestItemRepository_GetByIDNotFound(t *testing.T) {
	repo := newItemRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestAdjustStock_Reserve(t *testing.T) {
	repo := newItemRepo(t)
	item := seedItem(t, repo, true, 5)

	got, err := repo.AdjustStock(context.Background(), item.ID, -2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.InStock)
	assert.Equal(t, 2, got.Sold)

	got, err = repo.AdjustStock(context.Background(), item.ID, 2, -2)
	require.NoError(t, err)
	assert.Equal(t, 5, got.InStock)
	assert.Equal(t, 0, got.Sold)
}

func TestAdjustStock_RejectsOversell(t *testing.T) {
	repo := newItemRepo(t)
	item := seedItem(t, repo, true, 1)

	_, err := repo.AdjustStock(context.Background(), item.ID, -2, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	got, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.InStock)
	assert.Equal(t, 0, got.Sold)
}

func TestAdjustStock_UntrackedStockOnlyMovesSold(t *testing.T) {
	repo := newItemRepo(t)
	item := seedItem(t, repo, false, 0)

	got, err := repo.AdjustStock(context.Background(), item.ID, -4, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, got.InStock)
	assert.Equal(t, 4, got.Sold)

	_, err = repo.AdjustStock(context.Background(), item.ID, 5, -5)
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestAdjustStock_UnknownItem(t *testing.T) {
	repo := newItemRepo(t)

	_, err := repo.AdjustStock(context.Background(), uuid.New(), -1, 1)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestFetchActiveByIDs_SkipsInactive(t *testing.T) {
	repo := newItemRepo(t)
	active := seedItem(t, repo, true, 5)
	inactive := seedItem(t, repo, true, 5)
	require.NoError(t, repo.SetActive(context.Background(), inactive.ID, false))

	items, err := repo.FetchActiveByIDs(context.Background(), []uuid.UUID{active.ID, inactive.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, active.ID, items[0].ID)
}

func TestOptionsRepository_Upsert(t *testing.T) {
	repo := NewGormOptionsRepository(dbtest.Open(t))
	require.NoError(t, repo.Migrate())
	owner := uuid.New()

	got, err := repo.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := &domain.ItemOptions{AcceptedPaymentOptions: []domain.PaymentOption{{Kind: "cash"}}, BaseCurrency: "EUR"}
	require.NoError(t, repo.Put(context.Background(), owner, first))

	second := &domain.ItemOptions{AcceptedPaymentOptions: []domain.PaymentOption{{Kind: "card"}}, BaseCurrency: "USD", RequireAccept: true}
	require.NoError(t, repo.Put(context.Background(), owner, second))

	got, err = repo.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "USD", got.BaseCurrency)
	assert.True(t, got.RequireAccept)
}
