// Package notify publishes fulfillment events to RabbitMQ for the
// notification, achievement and environmental subsystems.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "fulfillment.events"

	NotificationsQueue = "notifications.q"
	AchievementsQueue  = "achievements.q"
	EnvironmentQueue   = "environment.q"
	DeadLetterQueue    = "dlq"

	deadLetterExchange = "dlx"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
	UseTLS   bool
}

// Client is a confirm-mode AMQP publisher. Publishes are serialized with a
// mutex because confirmations arrive on a single channel.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

func Dial(cfg Config) (*Client, error) {
	if cfg.VHost == "" {
		cfg.VHost = "/"
	}
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	url := fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.VHost)

	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(url)
	}
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

// DeclareTopology sets up the fulfillment exchange, the collaborator
// queues and their dead-letter fallback.
func (c *Client) DeclareTopology() error {
	if err := c.ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.ExchangeDeclare(deadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	dlxArgs := amqp.Table{
		"x-dead-letter-exchange":    deadLetterExchange,
		"x-dead-letter-routing-key": DeadLetterQueue,
	}
	for queue, key := range map[string]string{
		NotificationsQueue: "order.*",
		AchievementsQueue:  "achievement.check",
		EnvironmentQueue:   "environment.contribution",
	} {
		if _, err := c.ch.QueueDeclare(queue, true, false, false, false, dlxArgs); err != nil {
			return err
		}
		if err := c.ch.QueueBind(queue, key, EventsExchange, false, nil); err != nil {
			return err
		}
	}
	if _, err := c.ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(DeadLetterQueue, DeadLetterQueue, deadLetterExchange, false, nil)
}

// Publish sends a persistent JSON message and waits for the broker's
// ack/nack or the context deadline.
func (c *Client) Publish(ctx context.Context, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, EventsExchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}
