package notifications

import (
	"context"
	"fmt"

	"buslane/internal/shared/config"
	"buslane/pkg/logger"
)

// Publisher delivers booking events to whichever broker is configured.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, event *BookingEvent) error
	Close() error
}

// NewPublisher picks the publisher named by EVENT_BROKER.
func NewPublisher(cfg config.BrokerConfig) (Publisher, error) {
	switch cfg.Kind {
	case "kafka":
		producerCfg := DefaultKafkaProducerConfig()
		producerCfg.Brokers = cfg.KafkaBrokers
		producerCfg.Topic = cfg.KafkaBookingTopic
		return NewKafkaPublisher(producerCfg)
	case "rabbitmq":
		return NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQBookingQueue)
	case "", "none":
		return NewLogPublisher(logger.GetDefault()), nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.Kind)
	}
}

// LogPublisher writes events to the application log. It is the publisher used
// when no broker is configured.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishBookingEvent(ctx context.Context, event *BookingEvent) error {
	p.log.WithFields(map[string]interface{}{
		"event_id":    event.ID.String(),
		"schedule_id": event.ScheduleID,
		"seats":       event.Seats,
		"status":      event.Status,
	}).InfoContext(ctx, "Booking Event")
	p.log.LogBookingEventPublished(ctx, "log", string(event.Type), event.BookingID)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
