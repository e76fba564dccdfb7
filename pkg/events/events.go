package events

import (
	"strings"
	"time"
)

// Exchange names
const (
	ExchangeProfiles = "profiles.events"
	ExchangeOrders   = "orders.events"
)

// Routing keys
const (
	RoutingKeyProfileCreated = "profile.created"
	RoutingKeyOrderCompleted = "order.order_completed"

	// RoutingKeyOrderAll binds every order event
	RoutingKeyOrderAll = "order.#"
)

// OrderRoutingKey derives the routing key for an order event key, e.g. ORDER_CREATE -> order.order_create
func OrderRoutingKey(eventKey string) string {
	return "order." + strings.ToLower(eventKey)
}

// ProfileCreatedEvent is published when a profile is created
type ProfileCreatedEvent struct {
	Version   string                `json:"version"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	TraceID   string                `json:"trace_id"`
	Payload   ProfileCreatedPayload `json:"payload"`
}

// ProfileCreatedPayload contains profile data
type ProfileCreatedPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfileCreatedEvent creates a new ProfileCreatedEvent
func NewProfileCreatedEvent(payload ProfileCreatedPayload, traceID string) *ProfileCreatedEvent {
	return &ProfileCreatedEvent{
		Version:   "1.0",
		EventType: RoutingKeyProfileCreated,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// OrderEvent is the notification envelope for every order lifecycle event
type OrderEvent struct {
	Version   string            `json:"version"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	TraceID   string            `json:"trace_id"`
	Payload   OrderEventPayload `json:"payload"`
}

// OrderEventPayload mirrors a recorded domain event
type OrderEventPayload struct {
	EventID         string    `json:"event_id"`
	Kind            string    `json:"kind"`
	EventKey        string    `json:"event_key"`
	DataObjectID    string    `json:"data_object_id"`
	ParticipantIDs  []string  `json:"participant_ids"`
	BelongsToID     string    `json:"belongs_to_id,omitempty"`
	BelongsToKind   string    `json:"belongs_to_kind,omitempty"`
	BuyerProfileID  string    `json:"buyer_profile_id"`
	SellerProfileID string    `json:"seller_profile_id"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewOrderEvent wraps a payload in the versioned envelope
func NewOrderEvent(payload OrderEventPayload, traceID string) *OrderEvent {
	return &OrderEvent{
		Version:   "1.0",
		EventType: OrderRoutingKey(payload.EventKey),
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}
