package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	domainclients "github.com/Matthew11K/group-watcher/internal/domain/clients"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

type Consumer struct {
	reader      *kafka.Reader
	dlqWriter   *kafka.Writer
	logger      *slog.Logger
	eventsTopic string
	dlqTopic    string
}

func NewConsumer(
	brokers []string,
	groupID string,
	eventsTopic string,
	dlqTopic string,
	logger *slog.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          eventsTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: 1 * time.Second,
		Logger:         kafka.LoggerFunc(logger.Debug),
		ErrorLogger:    kafka.LoggerFunc(logger.Error),
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &Consumer{
		reader:      reader,
		dlqWriter:   dlqWriter,
		logger:      logger,
		eventsTopic: eventsTopic,
		dlqTopic:    dlqTopic,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handler domainclients.EventHandler) error {
	c.logger.Info("Запуск потребления событий платформы из Kafka",
		"topic", c.eventsTopic,
	)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Остановка потребления событий из Kafka")
				return nil
			}

			c.logger.Error("Ошибка при чтении сообщения из Kafka",
				"error", err,
			)

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}

			continue
		}

		c.logger.Debug("Получено сообщение из Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)

		if err := c.processMessage(ctx, &msg, handler); err != nil {
			c.logger.Error("Ошибка при обработке события платформы",
				"error", err,
			)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message, handler domainclients.EventHandler) error {
	event, err := DecodeEvent(msg.Value)
	if err != nil {
		if sendErr := c.sendToDLQ(ctx, msg.Value, err.Error()); sendErr != nil {
			return multierr.Append(err, sendErr)
		}

		return err
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		return fmt.Errorf("ошибка при обработке события: %w", err)
	}

	return nil
}

// DecodeEvent parses a platform event payload and rejects events without a chat id.
func DecodeEvent(value []byte) (*models.PlatformEvent, error) {
	var event models.PlatformEvent

	if err := json.Unmarshal(value, &event); err != nil {
		return nil, &domainerrors.ErrMalformedEvent{Reason: "ошибка десериализации: " + err.Error()}
	}

	if event.ChatID == 0 {
		return nil, &domainerrors.ErrMalformedEvent{Reason: "отсутствует chat_id"}
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return &event, nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", c.dlqTopic,
	)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	return multierr.Combine(c.reader.Close(), c.dlqWriter.Close())
}
