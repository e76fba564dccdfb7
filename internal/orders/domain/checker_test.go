package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	catalog "go-market/internal/catalog/domain"
	"go-market/pkg/errors"
)

func cardOptions(currency string) *catalog.ItemOptions {
	return &catalog.ItemOptions{
		AcceptedPaymentOptions: []catalog.PaymentOption{{Kind: "card"}},
		ShippingOptions:        []catalog.ShippingOption{{Label: "post", Price: d("5")}},
		BaseCurrency:           currency,
	}
}

func line(owner uuid.UUID, opts *catalog.ItemOptions, useInStock bool, inStock, qty int) Line {
	return Line{
		Item:     &catalog.Item{ID: uuid.New(), OwnerProfileID: owner, Price: d("10"), UseInStock: useInStock, InStock: inStock},
		Options:  opts,
		Quantity: qty,
	}
}

func TestItemsFound(t *testing.T) {
	a := &catalog.Item{ID: uuid.New()}
	missing := uuid.New()

	assert.NoError(t, ItemsFound([]uuid.UUID{a.ID}, []*catalog.Item{a}))

	err := ItemsFound([]uuid.UUID{a.ID, missing}, []*catalog.Item{a})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Contains(t, errors.As(err).Details.(map[string]interface{})["item_ids"], missing.String())
}

func TestItemsInStock(t *testing.T) {
	seller := uuid.New()

	assert.NoError(t, ItemsInStock([]Line{line(seller, nil, true, 5, 5)}))
	assert.NoError(t, ItemsInStock([]Line{line(seller, nil, false, 0, 50)}))

	err := ItemsInStock([]Line{line(seller, nil, true, 5, 2), line(seller, nil, true, 1, 2)})
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestPaymentAndShippingSupported(t *testing.T) {
	seller := uuid.New()
	lines := []Line{line(seller, cardOptions("USD"), false, 0, 1), line(seller, cardOptions("USD"), false, 0, 1)}

	assert.NoError(t, PaymentSupported(lines, "card"))
	assert.Equal(t, ErrPaymentUnsupported, PaymentSupported(lines, "cash"))
	assert.Equal(t, ErrPaymentUnsupported, PaymentSupported([]Line{line(seller, nil, false, 0, 1)}, "card"))

	assert.NoError(t, ShippingSupported(lines, "post"))
	assert.Equal(t, ErrShippingUnsupported, ShippingSupported(lines, "courier"))

	assert.Equal(t, ErrHomeDeliveryUnsupported, HomeDeliverySupported(lines))
	fee := d("3")
	withHome := cardOptions("USD")
	withHome.HomeDeliveryPrice = &fee
	assert.NoError(t, HomeDeliverySupported([]Line{line(seller, withHome, false, 0, 1)}))
}

func TestOneCurrencyAndOwner(t *testing.T) {
	seller, other := uuid.New(), uuid.New()

	assert.NoError(t, OneCurrency([]Line{line(seller, cardOptions("usd"), false, 0, 1), line(seller, cardOptions("USD"), false, 0, 1)}))
	assert.Equal(t, ErrMixedCurrencies, OneCurrency([]Line{line(seller, cardOptions("USD"), false, 0, 1), line(seller, cardOptions("EUR"), false, 0, 1)}))

	assert.NoError(t, OneOwner([]Line{line(seller, nil, false, 0, 1), line(seller, nil, false, 0, 1)}))
	assert.Equal(t, ErrMixedOwners, OneOwner([]Line{line(seller, nil, false, 0, 1), line(other, nil, false, 0, 1)}))
	assert.NoError(t, OneOwner(nil))

	assert.Equal(t, ErrBuyerOwnsItem, BuyerNotOwner([]Line{line(seller, nil, false, 0, 1)}, seller))
	assert.NoError(t, BuyerNotOwner([]Line{line(seller, nil, false, 0, 1)}, other))
}

func TestParticipantGuards(t *testing.T) {
	buyer, seller, stranger := uuid.New(), uuid.New(), uuid.New()
	o := &Order{BuyerProfileID: buyer, SellerProfileID: seller}

	assert.NoError(t, IsSeller(o, seller))
	assert.Equal(t, ErrNotSeller, IsSeller(o, buyer))
	assert.NoError(t, IsBuyer(o, buyer))
	assert.Equal(t, ErrNotBuyer, IsBuyer(o, seller))
	assert.NoError(t, CanAccess(o, buyer))
	assert.NoError(t, CanAccess(o, seller))
	assert.True(t, errors.Is(CanAccess(o, stranger), errors.CodeUnauthorized))

	assert.NoError(t, CanBeCancelled(o))
	o.Finalized = true
	assert.Equal(t, ErrCannotBeCancelled, CanBeCancelled(o))
}
