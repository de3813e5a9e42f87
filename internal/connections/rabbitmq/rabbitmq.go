package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"pub-order-system/internal/config"
	"pub-order-system/internal/domain"
)

const (
	EventsExchange     = "pub.events"
	NotificationsQueue = "pub.events.notifications"
)

// Client wraps one connection/channel pair with publisher confirms enabled.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes publish-and-wait-for-confirm
}

func Dial(cfg config.Rabbit) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.VHost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareTopology sets up the fanout exchange committed events are relayed
// to, and the durable queue the notifier consumes. Idempotent.
func (c *Client) DeclareTopology() error {
	if err := c.ch.ExchangeDeclare(EventsExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(NotificationsQueue, "", EventsExchange, false, nil)
}

// PublishEvent relays one committed event to the fanout exchange and waits
// for the broker's confirm.
func (c *Client) PublishEvent(ctx context.Context, ev domain.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.ch.PublishWithContext(ctx, EventsExchange, "", false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: ev.ID,
		Timestamp:     time.Now().UTC(),
		Headers:       amqp.Table{"x-event-type": string(ev.Type)},
		Body:          body,
	})
	if err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if !conf.Ack {
			return errors.New("publish NACK from broker")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
