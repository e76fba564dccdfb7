package adapters

import (
	"context"

	"go-market/internal/orders/domain"
	"go-market/pkg/events"
	"go-market/pkg/logger"
	"go-market/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// Publish sends the event under order.<event key>. The event id is the message id so consumers can dedupe.
func (p *RabbitMQPublisher) Publish(ctx context.Context, e domain.Event) error {
	msg := events.NewOrderEvent(ToPayload(e), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, msg.EventType, e.ID.String(), msg)
}

// ToPayload converts a domain event to its wire form
func ToPayload(e domain.Event) events.OrderEventPayload {
	participants := make([]string, 0, len(e.ParticipantIDs))
	for _, id := range e.ParticipantIDs {
		participants = append(participants, id.String())
	}

	payload := events.OrderEventPayload{
		EventID:         e.ID.String(),
		Kind:            e.Kind,
		EventKey:        string(e.EventKey),
		DataObjectID:    e.DataObjectID.String(),
		ParticipantIDs:  participants,
		BelongsToKind:   e.BelongsToKind,
		BuyerProfileID:  e.BuyerProfileID.String(),
		SellerProfileID: e.SellerProfileID.String(),
		Status:          string(e.Status),
		OccurredAt:      e.CreatedAt,
	}
	if e.BelongsToID != nil {
		payload.BelongsToID = e.BelongsToID.String()
	}
	return payload
}
