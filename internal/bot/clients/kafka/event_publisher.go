package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

// EventPublisher writes platform events to the events topic. The selftest
// command uses it to simulate a post from the watched user.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event *models.PlatformEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации события: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ChatID, 10)),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при публикации события: %w", err)
	}

	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
