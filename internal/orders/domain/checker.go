package domain

import (
	"github.com/google/uuid"

	catalog "go-market/internal/catalog/domain"
)

// Line pairs a fetched item with the requested quantity and its resolved options
type Line struct {
	Item     *catalog.Item
	Options  *catalog.ItemOptions
	Quantity int
}

// ItemsFound fails when any requested id did not come back as an active item
func ItemsFound(ids []uuid.UUID, items []*catalog.Item) error {
	found := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		found[item.ID] = true
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return NewItemsNotFound(missing)
	}
	return nil
}

// ItemsInStock fails on the first stock-tracked line asking for more than is in stock
func ItemsInStock(lines []Line) error {
	for _, l := range lines {
		if l.Item.UseInStock && l.Quantity > l.Item.InStock {
			return NewInsufficientStock(l.Item.ID, l.Quantity, l.Item.InStock)
		}
	}
	return nil
}

// PaymentSupported fails unless every line accepts the payment kind
func PaymentSupported(lines []Line, kind string) error {
	for _, l := range lines {
		if l.Options == nil {
			return ErrPaymentUnsupported
		}
		if _, ok := l.Options.PaymentOption(kind); !ok {
			return ErrPaymentUnsupported
		}
	}
	return nil
}

// ShippingSupported fails unless every line offers the shipping label. Only run when one was selected.
func ShippingSupported(lines []Line, label string) error {
	for _, l := range lines {
		if l.Options == nil || !l.Options.SupportsShipping(label) {
			return ErrShippingUnsupported
		}
	}
	return nil
}

// HomeDeliverySupported fails unless every line offers home delivery. Only run when it was requested.
func HomeDeliverySupported(lines []Line) error {
	for _, l := range lines {
		if l.Options == nil || !l.Options.OffersHomeDelivery() {
			return ErrHomeDeliveryUnsupported
		}
	}
	return nil
}

// OneCurrency fails when lines are priced in different base currencies
func OneCurrency(lines []Line) error {
	currency := ""
	for i, l := range lines {
		c := ""
		if l.Options != nil {
			c = l.Options.Currency()
		}
		if i == 0 {
			currency = c
			continue
		}
		if c != currency {
			return ErrMixedCurrencies
		}
	}
	return nil
}

// OneOwner fails when lines come from more than one seller
func OneOwner(lines []Line) error {
	if len(lines) == 0 {
		return nil
	}
	owner := lines[0].Item.OwnerProfileID
	for _, l := range lines[1:] {
		if l.Item.OwnerProfileID != owner {
			return ErrMixedOwners
		}
	}
	return nil
}

// BuyerNotOwner fails when the buyer owns any of the items
func BuyerNotOwner(lines []Line, buyer uuid.UUID) error {
	for _, l := range lines {
		if l.Item.OwnerProfileID == buyer {
			return ErrBuyerOwnsItem
		}
	}
	return nil
}

// CanBeCancelled fails for finalized orders
func CanBeCancelled(o *Order) error {
	if o.Finalized {
		return ErrCannotBeCancelled
	}
	return nil
}

// IsSeller fails unless profile is the order's seller
func IsSeller(o *Order, profile uuid.UUID) error {
	if o.SellerProfileID != profile {
		return ErrNotSeller
	}
	return nil
}

// IsBuyer fails unless profile is the order's buyer
func IsBuyer(o *Order, profile uuid.UUID) error {
	if o.BuyerProfileID != profile {
		return ErrNotBuyer
	}
	return nil
}

// CanAccess fails unless profile is the buyer or the seller
func CanAccess(o *Order, profile uuid.UUID) error {
	for _, p := range o.Participants() {
		if p == profile {
			return nil
		}
	}
	return ErrNoAccess
}
