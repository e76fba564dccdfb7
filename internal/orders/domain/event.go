package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKey names an order lifecycle event
type EventKey string

// Order event keys
const (
	EventOrderCreate             EventKey = "ORDER_CREATE"
	EventOrderAccept             EventKey = "ORDER_ACCEPT"
	EventOrderReject             EventKey = "ORDER_REJECT"
	EventOrderCancel             EventKey = "ORDER_CANCEL"
	EventDeliveryConfirmedSeller EventKey = "DELIVERY_CONFIRMED_SELLER"
	EventDeliveryConfirmedBuyer  EventKey = "DELIVERY_CONFIRMED_BUYER"
	EventPaymentConfirmedSeller  EventKey = "PAYMENT_CONFIRMED_SELLER"
	EventPaymentConfirmedBuyer   EventKey = "PAYMENT_CONFIRMED_BUYER"
	EventDeliveryTimeChanged     EventKey = "DELIVERY_TIME_CHANGED"
	EventOrderPaid               EventKey = "ORDER_PAID"
	EventOrderCompleted          EventKey = "ORDER_COMPLETED"
)

const (
	// EventKind is the kind of every event emitted by orders
	EventKind = "ORDER"
	// BelongsToKindOrder links events back to their order
	BelongsToKindOrder = "Order"
)

// Event is one notification about an order, recorded with the order change that caused it
type Event struct {
	ID              uuid.UUID   `json:"id"`
	Kind            string      `json:"kind"`
	EventKey        EventKey    `json:"event_key"`
	DataObjectID    uuid.UUID   `json:"data_object_id"`
	ParticipantIDs  []uuid.UUID `json:"participant_ids"`
	BelongsToID     *uuid.UUID  `json:"belongs_to_id,omitempty"`
	BelongsToKind   string      `json:"belongs_to_kind,omitempty"`
	BuyerProfileID  uuid.UUID   `json:"buyer_profile_id"`
	SellerProfileID uuid.UUID   `json:"seller_profile_id"`
	Status          Status      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewEvents builds one event per key for the order in its current state
func NewEvents(o *Order, keys ...EventKey) []Event {
	now := time.Now().UTC()
	orderID := o.ID

	out := make([]Event, 0, len(keys))
	for _, key := range keys {
		out = append(out, Event{
			ID:              uuid.New(),
			Kind:            EventKind,
			EventKey:        key,
			DataObjectID:    o.ID,
			ParticipantIDs:  o.Participants(),
			BelongsToID:     &orderID,
			BelongsToKind:   BelongsToKindOrder,
			BuyerProfileID:  o.BuyerProfileID,
			SellerProfileID: o.SellerProfileID,
			Status:          o.Status,
			CreatedAt:       now,
		})
	}
	return out
}
