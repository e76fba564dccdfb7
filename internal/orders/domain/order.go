package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "go-market/internal/catalog/domain"
)

// RequestedItem is one {item_id, quantity} tuple of an order request
type RequestedItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// LineItem is the purchase-time copy of an item. It never changes after creation.
type LineItem struct {
	Item      catalog.Item    `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PaymentIntent is the opaque gateway result stored on the order
type PaymentIntent struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret,omitempty"`
	CustomerID      string `json:"customer_id,omitempty"`
	EphemeralKey    string `json:"ephemeral_key,omitempty"`
}

// Order is an agreement between one buyer and one seller
type Order struct {
	ID              uuid.UUID `json:"id"`
	BuyerProfileID  uuid.UUID `json:"buyer_profile_id"`
	SellerProfileID uuid.UUID `json:"seller_profile_id"`

	Items []LineItem `json:"items"`

	ItemsPriceTotal   decimal.Decimal `json:"items_price_total"`
	ShippingPrice     decimal.Decimal `json:"shipping_price"`
	HomeDeliveryPrice decimal.Decimal `json:"home_delivery_price"`
	TransactionFee    decimal.Decimal `json:"transaction_fee"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	BaseCurrency      string          `json:"base_currency"`

	ShippingSelected      string                 `json:"shipping_selected,omitempty"`
	HomeDelivery          bool                   `json:"home_delivery"`
	PaymentOptionSelected string                 `json:"payment_option_selected"`
	PaymentDetails        *catalog.PaymentOption `json:"payment_details,omitempty"`

	State

	HasReview               bool           `json:"has_review"`
	IsEscrow                bool           `json:"is_escrow"`
	EstimatedDeliveryDate   *time.Time     `json:"estimated_delivery_date,omitempty"`
	TransactionDataExternal *PaymentIntent `json:"transaction_data_external,omitempty"`
	DeliveryEventID         *uuid.UUID     `json:"delivery_event_id,omitempty"`
	PickupLocationID        *uuid.UUID     `json:"pickup_location_id,omitempty"`

	// Version guards concurrent updates of the same order. Deleted orders are kept but hidden from reads.
	Version   int       `json:"-"`
	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Participants is always [buyer, seller]
func (o *Order) Participants() []uuid.UUID {
	return []uuid.UUID{o.BuyerProfileID, o.SellerProfileID}
}

// Apply runs action through the state machine and keeps the result on success
func (o *Order) Apply(action Action) ([]EventKey, error) {
	next, keys, err := Transition(o.State, action)
	if err != nil {
		return nil, err
	}
	o.State = next
	if len(keys) > 0 {
		o.UpdatedAt = time.Now().UTC()
	}
	return keys, nil
}

// LineOptions returns the options snapshotted with the first line
func (o *Order) LineOptions() *catalog.ItemOptions {
	if len(o.Items) == 0 {
		return nil
	}
	return o.Items[0].Item.Options
}

// DefaultPaymentDetails is the seller's accepted option matching the buyer's choice
func (o *Order) DefaultPaymentDetails() *catalog.PaymentOption {
	opts := o.LineOptions()
	if opts == nil {
		return nil
	}
	if p, ok := opts.PaymentOption(o.PaymentOptionSelected); ok {
		return &p
	}
	return nil
}

// ParseDeliveryDate accepts RFC 3339 timestamps and plain dates
func ParseDeliveryDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDeliveryDate
}
