package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"buslane/pkg/logger"

	"github.com/IBM/sarama"
)

// EventHandler reacts to one consumed booking event.
type EventHandler func(ctx context.Context, event *BookingEvent) error

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "buslane-booking-consumers",
		Topics:               []string{"booking-events"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    5 * time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// KafkaConsumer runs a consumer group over the booking event topic.
type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       EventHandler
	log           *logger.Logger
	wg            sync.WaitGroup
}

func NewKafkaConsumer(config *ConsumerConfig, handler EventHandler) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
		log:           logger.GetDefault(),
	}, nil
}

// Start consumes until ctx is cancelled.
func (kc *KafkaConsumer) Start(ctx context.Context) {
	kc.log.Info("Starting booking event consumer", "topics", kc.config.Topics, "group", kc.config.GroupID)

	go func() {
		for err := range kc.consumerGroup.Errors() {
			kc.log.WithError(err).Error("consumer group error")
		}
	}()

	handler := &consumerGroupHandler{
		handler:    kc.handler,
		log:        kc.log,
		maxRetries: kc.config.MaxRetries,
		backoff:    kc.config.RetryBackoffDuration,
	}

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		for {
			// Consume returns on every rebalance and has to be called again
			if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
				kc.log.WithError(err).Error("error consuming booking events")
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
}

// Stop waits for the consume loop to end; cancel the Start context first.
func (kc *KafkaConsumer) Stop() error {
	kc.wg.Wait()
	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	kc.log.Info("Booking event consumer stopped")
	return nil
}

type consumerGroupHandler struct {
	handler    EventHandler
	log        *logger.Logger
	maxRetries int
	backoff    time.Duration
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.WithError(err).Error("failed to process booking event",
					"topic", message.Topic, "partition", message.Partition, "offset", message.Offset)
			}
			// poison messages are logged and skipped
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	event, err := ParseBookingEvent(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal booking event: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err = h.handler(ctx, event)
		if err == nil || attempt >= h.maxRetries {
			return err
		}

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// LogEventHandler is the default consumer handler: it records each event.
func LogEventHandler(log *logger.Logger) EventHandler {
	return func(ctx context.Context, event *BookingEvent) error {
		log.InfoWithContext(ctx, "Booking Event Consumed", map[string]interface{}{
			"event_type":  string(event.Type),
			"booking_id":  event.BookingID,
			"schedule_id": event.ScheduleID,
			"status":      event.Status,
			"seats":       event.Seats,
		})
		return nil
	}
}
