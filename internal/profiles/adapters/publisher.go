package adapters

import (
	"context"

	"go-market/internal/profiles/domain"
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

// PublishProfileCreated publishes a profile created event
func (p *RabbitMQPublisher) PublishProfileCreated(ctx context.Context, profile *domain.Profile) error {
	event := events.NewProfileCreatedEvent(events.ProfileCreatedPayload{
		ID:        profile.ID.String(),
		UserID:    profile.UserID,
		Kind:      string(profile.Kind),
		Name:      profile.Name,
		CreatedAt: profile.CreatedAt,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyProfileCreated, profile.ID.String(), event)
}
