package notifications

import (
	"context"
	"fmt"
	"sync"

	"buslane/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes booking events to a durable RabbitMQ queue through
// the default exchange.
type RabbitPublisher struct {
	conn  *amqp.Connection
	queue string
	log   *logger.Logger

	// amqp channels are not safe for concurrent publishes
	mu sync.Mutex
	ch *amqp.Channel
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare failed: %w", err)
	}

	log := logger.GetDefault()
	log.Info("RabbitMQ booking event publisher ready", "queue", queue)
	return &RabbitPublisher{conn: conn, ch: ch, queue: queue, log: log}, nil
}

func (rp *RabbitPublisher) PublishBookingEvent(ctx context.Context, event *BookingEvent) error {
	pub, err := rabbitPublishing(event)
	if err != nil {
		return err
	}

	rp.mu.Lock()
	err = rp.ch.PublishWithContext(ctx,
		"",       // default exchange
		rp.queue, // routing key = queue name
		false,    // mandatory
		false,    // immediate
		pub,
	)
	rp.mu.Unlock()
	if err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}

	rp.log.LogBookingEventPublished(ctx, "rabbitmq", string(event.Type), event.BookingID)
	return nil
}

func rabbitPublishing(event *BookingEvent) (amqp.Publishing, error) {
	body, err := event.ToJSON()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}

func (rp *RabbitPublisher) Close() error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if err := rp.ch.Close(); err != nil {
		_ = rp.conn.Close()
		return fmt.Errorf("rabbitmq channel close failed: %w", err)
	}
	return rp.conn.Close()
}
