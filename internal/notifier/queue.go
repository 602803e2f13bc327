package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/hoa-community-api/internal/queue"
)

// Broker publishes notification events to the RabbitMQ notifications
// queue, where the background consumer picks them up.  Each publish dials
// its own short-lived connection so a broker outage cannot wedge a request
// handler holding a dead channel.
type Broker struct {
	url string
}

// NewBroker returns an AMQP-backed notifier publishing to the given broker URL.
func NewBroker(url string) *Broker { return &Broker{url: url} }

// Notify publishes the event as a persistent JSON message.
func (b *Broker) Notify(ctx context.Context, ev queue.NotificationEvent) error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.NotificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueueName, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
