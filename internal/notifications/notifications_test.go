package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"buslane/internal/shared/config"
	"buslane/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"
)

func sampleEvent() *BookingEvent {
	event := NewBookingEvent(BookingEventCreated)
	event.BookingID = "bk-1"
	event.BookingRef = "BUS-20260314-ABC123"
	event.ScheduleID = "sch-9"
	event.UserID = "usr-1"
	event.Seats = []string{"A1", "B1"}
	event.TotalPrice = 1000
	event.Status = "pending"
	return event
}

func TestKafkaPublisherKeysBySchedule(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "booking-events" {
			return fmt.Errorf("topic = %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil || string(key) != "sch-9" {
			return fmt.Errorf("key = %s, %v", key, err)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		event, err := ParseBookingEvent(value)
		if err != nil {
			return err
		}
		if event.BookingID != "bk-1" || len(event.Seats) != 2 {
			return fmt.Errorf("event = %+v", event)
		}
		for _, h := range msg.Headers {
			if string(h.Key) == "event_type" && string(h.Value) != string(BookingEventCreated) {
				return fmt.Errorf("event_type header = %s", h.Value)
			}
		}
		return nil
	})

	publisher := newKafkaPublisher(producer, "booking-events")
	if err := publisher.PublishBookingEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("PublishBookingEvent: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestKafkaPublisherReportsSendFailure(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := newKafkaPublisher(producer, "booking-events")
	err := publisher.PublishBookingEvent(context.Background(), sampleEvent())
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("err = %v, want ErrOutOfBrokers", err)
	}
	_ = publisher.Close()
}

func TestRabbitPublishingIsPersistentJSON(t *testing.T) {
	t.Parallel()
	event := sampleEvent()

	pub, err := rabbitPublishing(event)
	if err != nil {
		t.Fatalf("rabbitPublishing: %v", err)
	}
	if pub.DeliveryMode != amqp.Persistent || pub.ContentType != "application/json" {
		t.Errorf("publishing = %+v", pub)
	}
	if pub.MessageId != event.ID.String() || pub.Type != "BOOKING_CREATED" {
		t.Errorf("MessageId = %s, Type = %s", pub.MessageId, pub.Type)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(pub.Body, &decoded); err != nil {
		t.Fatalf("body: %v", err)
	}
	if decoded["booking_ref"] != "BUS-20260314-ABC123" || decoded["total_price"] != float64(1000) {
		t.Errorf("body = %v", decoded)
	}
	if _, ok := decoded["previous_status"]; ok {
		t.Error("previous_status should be omitted on creation events")
	}
}

func TestNewPublisherSelection(t *testing.T) {
	t.Parallel()

	publisher, err := NewPublisher(config.BrokerConfig{Kind: "none"})
	if err != nil {
		t.Fatalf("NewPublisher(none): %v", err)
	}
	if _, ok := publisher.(*LogPublisher); !ok {
		t.Errorf("publisher = %T, want *LogPublisher", publisher)
	}

	if _, err := NewPublisher(config.BrokerConfig{Kind: "carrier-pigeon"}); err == nil {
		t.Error("unknown broker kind should fail")
	}
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewLogPublisher(logger.NewWithWriter(&buf, "info"))

	if err := publisher.PublishBookingEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("PublishBookingEvent: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Booking Event") || !strings.Contains(out, "sch-9") {
		t.Errorf("log output = %q", out)
	}
}

func TestProcessMessageRetriesHandler(t *testing.T) {
	t.Parallel()

	calls := 0
	h := &consumerGroupHandler{
		handler: func(ctx context.Context, event *BookingEvent) error {
			calls++
			if calls < 3 {
				return errors.New("downstream busy")
			}
			if event.ScheduleID != "sch-9" {
				t.Errorf("event = %+v", event)
			}
			return nil
		},
		log:        logger.GetDefault(),
		maxRetries: 3,
		backoff:    time.Millisecond,
	}

	body, _ := sampleEvent().ToJSON()
	if err := h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: body}); err != nil {
		t.Fatalf("processMessage: %v", err)
	}
	if calls != 3 {
		t.Errorf("handler called %d times, want 3", calls)
	}
}

func TestProcessMessageGivesUp(t *testing.T) {
	t.Parallel()

	boom := errors.New("still down")
	calls := 0
	h := &consumerGroupHandler{
		handler:    func(context.Context, *BookingEvent) error { calls++; return boom },
		log:        logger.GetDefault(),
		maxRetries: 2,
		backoff:    time.Millisecond,
	}

	body, _ := sampleEvent().ToJSON()
	if err := h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: body}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want handler error", err)
	}
	if calls != 3 {
		t.Errorf("handler called %d times, want 3", calls)
	}

	if err := h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}); err == nil {
		t.Error("malformed message should fail")
	}
}
