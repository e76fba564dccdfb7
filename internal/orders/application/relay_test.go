package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market/internal/orders/domain"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

func TestOutboxRelay_RepublishesAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = errors.NewUpstream("broker down", nil)

	f.create(t, false)
	assert.Equal(t, []domain.EventKey{domain.EventOrderCreate, domain.EventOrderAccept}, f.store.PendingEvents())

	relay := NewOutboxRelay(f.store, f.publisher, time.Nanosecond, logger.NewNop())
	time.Sleep(time.Millisecond)

	n, err := relay.RelayOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, n)

	f.publisher.Err = nil
	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []domain.EventKey{domain.EventOrderCreate, domain.EventOrderAccept}, f.publisher.Keys())
	assert.Empty(t, f.store.PendingEvents())
}
