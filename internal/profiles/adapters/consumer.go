package adapters

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-market/internal/profiles/application"
	"go-market/pkg/events"
	"go-market/pkg/logger"
	"go-market/pkg/rabbitmq"
)

// OrderCompletedConsumer consumes order completion events
type OrderCompletedConsumer struct {
	consumer *rabbitmq.Consumer
	useCase  *application.ProfileUseCase
	log      *logger.Logger
}

// NewOrderCompletedConsumer creates a new consumer for order completion events
func NewOrderCompletedConsumer(conn *rabbitmq.Connection, useCase *application.ProfileUseCase, log *logger.Logger) (*OrderCompletedConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		"profiles.order-completed", // queue name
		events.ExchangeOrders,      // exchange
		[]string{events.RoutingKeyOrderCompleted},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &OrderCompletedConsumer{
		consumer: consumer,
		useCase:  useCase,
		log:      log,
	}, nil
}

// Start starts consuming order completion events
func (c *OrderCompletedConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, HandleOrderCompleted(c.useCase, c.log))
}

// HandleOrderCompleted decodes an order event and records the completion
func HandleOrderCompleted(useCase *application.ProfileUseCase, log *logger.Logger) rabbitmq.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		var event events.OrderEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.WithContext(ctx).Error("failed to unmarshal order event", zap.Error(err))
			return err
		}

		orderID, err := uuid.Parse(event.Payload.DataObjectID)
		if err != nil {
			return err
		}
		buyerID, err := uuid.Parse(event.Payload.BuyerProfileID)
		if err != nil {
			return err
		}
		sellerID, err := uuid.Parse(event.Payload.SellerProfileID)
		if err != nil {
			return err
		}

		return useCase.RecordOrderCompleted(ctx, application.RecordOrderCompletedInput{
			OrderID:  orderID,
			BuyerID:  buyerID,
			SellerID: sellerID,
		})
	}
}
