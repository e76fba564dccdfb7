package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-market/internal/orders/ports"
	"go-market/pkg/logger"
)

const relayBatchSize = 100

// OutboxRelay republishes events whose publish after commit did not go through
type OutboxRelay struct {
	store     ports.Store
	publisher ports.EventPublisher
	interval  time.Duration
	log       *logger.Logger
}

// NewOutboxRelay creates a relay. Events younger than interval are left to the request that wrote them.
func NewOutboxRelay(store ports.Store, publisher ports.EventPublisher, interval time.Duration, log *logger.Logger) *OutboxRelay {
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		log:       log,
	}
}

// Run relays pending events every interval until ctx is done
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				r.log.Warn("outbox relay failed", zap.Error(err))
			}
		}
	}
}

// RelayOnce publishes one batch of pending events and returns how many were sent.
// It stops at the first publish failure so events keep their order.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.store.Outbox().FetchPending(ctx, time.Now().UTC().Add(-r.interval), relayBatchSize)
	if err != nil {
		return 0, err
	}

	sent := make([]uuid.UUID, 0, len(pending))
	var publishErr error
	for _, e := range pending {
		if publishErr = r.publisher.Publish(ctx, e); publishErr != nil {
			break
		}
		sent = append(sent, e.ID)
	}

	if len(sent) > 0 {
		if err := r.store.Outbox().MarkSent(ctx, sent...); err != nil {
			return 0, err
		}
		r.log.Info("outbox events relayed", zap.Int("count", len(sent)))
	}
	return len(sent), publishErr
}
