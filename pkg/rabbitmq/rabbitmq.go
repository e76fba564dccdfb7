package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"go-market/pkg/logger"
)

const traceHeader = "x-trace-id"

// Connection holds one AMQP connection and channel
type Connection struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewConnection dials RabbitMQ and opens a channel
func NewConnection(url string, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		url: url,
		log: log,
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	c.log.Info("connected to RabbitMQ")
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func declareTopic(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
}

// Publisher publishes JSON messages to one topic exchange
type Publisher struct {
	conn     *Connection
	exchange string
	log      *logger.Logger
}

// NewPublisher declares the exchange and returns a publisher for it
func NewPublisher(conn *Connection, exchange string, log *logger.Logger) (*Publisher, error) {
	if err := declareTopic(conn.Channel(), exchange); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish sends message as a persistent JSON delivery. messageID lets consumers drop duplicates.
func (p *Publisher) Publish(ctx context.Context, routingKey, messageID string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	traceID := logger.GetTraceID(ctx)

	err = p.conn.Channel().PublishWithContext(
		ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			MessageId:     messageID,
			CorrelationId: traceID,
			Headers: amqp.Table{
				traceHeader: traceID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
		zap.String("message_id", messageID),
	)

	return nil
}

// Consumer reads from a durable queue bound to a topic exchange
type Consumer struct {
	conn        *Connection
	queue       string
	exchange    string
	routingKeys []string
	prefetch    int
	log         *logger.Logger
}

// NewConsumer declares the exchange, its dead-letter exchange and the queue, then binds the routing keys
func NewConsumer(conn *Connection, queue, exchange string, routingKeys []string, log *logger.Logger) (*Consumer, error) {
	ch := conn.Channel()

	if err := declareTopic(ch, exchange); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	dlx := exchange + ".dlx"
	if err := declareTopic(ch, dlx); err != nil {
		return nil, fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}

	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-dead-letter-exchange": dlx,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return &Consumer{
		conn:        conn,
		queue:       queue,
		exchange:    exchange,
		routingKeys: routingKeys,
		prefetch:    16,
		log:         log,
	}, nil
}

// MessageHandler handles one delivery body
type MessageHandler func(ctx context.Context, body []byte) error

// Consume starts a goroutine delivering messages to handler until ctx is done.
// A failed message is requeued once; a second failure sends it to the dead-letter exchange.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.handle(ctx, msg, handler)
			}
		}
	}()

	c.log.Info("consumer started",
		zap.String("queue", c.queue),
		zap.Strings("routing_keys", c.routingKeys),
	)

	return nil
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery, handler MessageHandler) {
	traceID, _ := msg.Headers[traceHeader].(string)
	msgCtx := logger.WithTraceIDContext(ctx, traceID)

	log := c.log.WithContext(msgCtx).With(
		zap.String("queue", c.queue),
		zap.String("routing_key", msg.RoutingKey),
		zap.String("message_id", msg.MessageId),
	)
	log.Debug("message received")

	if err := handler(msgCtx, msg.Body); err != nil {
		requeue := !msg.Redelivered
		log.Error("failed to handle message", zap.Error(err), zap.Bool("requeue", requeue))
		_ = msg.Nack(false, requeue)
		return
	}
	_ = msg.Ack(false)
}
