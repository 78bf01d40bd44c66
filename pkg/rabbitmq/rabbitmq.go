package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message body published for order lifecycle changes.
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	OrderKey       string    `json:"order_key"`
	CustomerID     string    `json:"customer_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Total          string    `json:"total"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger

	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// order queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = "order_queue"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	_, err = ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare queue %s", cfg.Queue)
	}

	log.Info("RabbitMQ client connected", zap.String("queue", cfg.Queue))
	return &Client{conn: conn, channel: ch, queue: cfg.Queue, log: log}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close channel"))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close connection"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishOrderEvent publishes ev as a persistent JSON message on the order
// queue. The event type travels in the message type property.
func (c *Client) PublishOrderEvent(_ context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         ev.Type,
			MessageId:    ev.OrderID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.OccurredAt,
		})
	if err != nil {
		return errors.Wrapf(err, "publish %s", ev.Type)
	}

	c.log.Debug("Order event published", zap.String("type", ev.Type), zap.String("order_id", ev.OrderID))
	return nil
}

// Ping reports whether the connection is still open.
func (c *Client) Ping(_ context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("RabbitMQ connection closed")
	}
	return nil
}

// ConsumeOrderEvents delivers order events to handler until ctx is done or
// the channel closes. Messages are acked on success; failed messages are
// requeued once and dropped when they fail again. Undecodable messages are
// dropped.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler func(context.Context, OrderEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "register consumer")
	}

	c.log.Info("Waiting for order events", zap.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("order event channel closed")
			}
			c.handle(ctx, msg, handler)
		}
	}
}

func (c *Client) handle(ctx context.Context, msg amqp.Delivery, handler func(context.Context, OrderEvent) error) {
	var ev OrderEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		c.log.Warn("Drop undecodable order event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}
	if err := handler(ctx, ev); err != nil {
		c.log.Warn("Process order event",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Bool("redelivered", msg.Redelivered),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			c.log.Error("Nack order event", zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.log.Error("Ack order event", zap.Error(ackErr))
	}
}

// LogOrderEvent is a handler that records every consumed event.
func LogOrderEvent(log *zap.Logger) func(context.Context, OrderEvent) error {
	return func(_ context.Context, ev OrderEvent) error {
		log.Info("Order event",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.String("status", ev.Status),
			zap.String("previous_status", ev.PreviousStatus),
			zap.String("total", ev.Total),
		)
		return nil
	}
}
