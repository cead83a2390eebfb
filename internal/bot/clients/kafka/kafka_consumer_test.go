package kafka_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaClient "github.com/Matthew11K/group-watcher/internal/bot/clients/kafka"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

type MockEventHandler struct {
	events []*models.PlatformEvent
	mu     sync.Mutex
}

func (m *MockEventHandler) HandleEvent(_ context.Context, event *models.PlatformEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)

	return nil
}

func (m *MockEventHandler) snapshot() []*models.PlatformEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*models.PlatformEvent(nil), m.events...)
}

func prepareTopicConfigs(topics []string) []segkafka.TopicConfig {
	logger := slog.Default().With(slog.String("component", "prepareTopicConfigs"))
	topicConfigs := make([]segkafka.TopicConfig, 0, len(topics))

	for _, topic := range topics {
		topicConfigs = append(topicConfigs, segkafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})

		logger.Info("Подготовлена конфигурация для топика", slog.String("topic", topic))
	}

	return topicConfigs
}

func handleCreateTopicsError(err error, attempt int) {
	logger := slog.Default().With(slog.String("component", "handleCreateTopicsError"))
	logger.Warn("Ошибка при вызове CreateTopics", slog.Int("attempt", attempt), slog.Any("error", err),
		slog.Duration("retry_after", 5*time.Second))

	var netErr net.Error

	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Warn("Таймаут операции CreateTopics")
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNREFUSED):
		logger.Warn("Сетевая ошибка при вызове CreateTopics", slog.Any("error_details", err))
	case errors.Is(err, segkafka.TopicAuthorizationFailed):
		logger.Warn("Topic Authorization Failed")
	case errors.Is(err, segkafka.GroupCoordinatorNotAvailable) || errors.Is(err, segkafka.NotController):
		logger.Warn("Брокер еще не полностью готов", slog.Any("kafka_error", err))
	case errors.Is(err, segkafka.RequestTimedOut):
		logger.Warn("Таймаут запроса на стороне Kafka")
	default:
		logger.Warn("Получена неизвестная или другая ошибка Kafka", slog.Any("error_details", err))
	}
}

func processTopicErrors(resp *segkafka.CreateTopicsResponse, attempt int) (bool, error) {
	logger := slog.Default().With(slog.String("component", "processTopicErrors"))
	allCreatedOrExists := true

	var lastErr error

	if resp == nil || resp.Errors == nil {
		logger.Error("Получен пустой ответ или пустой список ошибок от CreateTopics, хотя ошибки запроса не было", slog.Int("attempt", attempt))
		return false, fmt.Errorf("пустой ответ от CreateTopics")
	}

	for topicName, topicErrCode := range resp.Errors {
		switch {
		case topicErrCode != nil && !errors.Is(topicErrCode, segkafka.TopicAlreadyExists):
			specificErr := fmt.Errorf("ошибка создания топика %s: %w", topicName, topicErrCode)
			logger.Warn(specificErr.Error())
			lastErr = specificErr
			allCreatedOrExists = false
		case topicErrCode == nil:
			logger.Info("Топик успешно создан", slog.String("topic", topicName))
		default:
			logger.Info("Топик уже существует", slog.String("topic", topicName))
		}
	}

	return allCreatedOrExists, lastErr
}

func createTopicsAdmin(ctx context.Context, brokers []string, topics ...string) error {
	logger := slog.Default().With(slog.String("component", "createTopicsAdmin"))
	topicConfigs := prepareTopicConfigs(topics)

	transport := &segkafka.Transport{
		DialTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}
	defer transport.CloseIdleConnections()

	client := &segkafka.Client{
		Addr:      segkafka.TCP(brokers...),
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	deadline := time.Now().Add(90 * time.Second)

	var lastErr error

	attempt := 1

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			logger.Error("Контекст отменен во время ожидания создания топиков", slog.Any("error", ctx.Err()))
			return fmt.Errorf("контекст отменен во время создания топиков: %w", ctx.Err())
		default:
		}

		logger.Info("Попытка создания топиков через AdminClient", slog.Int("attempt", attempt), slog.Any("topics", topics))

		createCtx, createCancel := context.WithTimeout(ctx, 25*time.Second)
		resp, err := client.CreateTopics(createCtx, &segkafka.CreateTopicsRequest{
			Topics:       topicConfigs,
			ValidateOnly: false,
		})

		createCancel()

		if err != nil {
			lastErr = err
			handleCreateTopicsError(err, attempt)
			time.Sleep(5 * time.Second)

			attempt++

			continue
		}

		allCreatedOrExists, err := processTopicErrors(resp, attempt)
		if err != nil {
			lastErr = err
		}

		if allCreatedOrExists {
			logger.Info("Все запрошенные топики успешно созданы или уже существовали.")
			return nil
		}

		logger.Warn("Не все топики созданы/существуют, попытка через 5 секунд", slog.Int("attempt", attempt))
		time.Sleep(5 * time.Second)

		attempt++
	}

	logger.Error("Не удалось создать топики после нескольких попыток", slog.Any("last_error", lastErr),
		slog.Duration("total_wait", 90*time.Second))

	finalError := fmt.Errorf("ошибка создания топиков %v через AdminClient после %d попыток", topics, attempt-1)
	if lastErr != nil {
		finalError = fmt.Errorf("%w: %w", finalError, lastErr)
	}

	return finalError
}

func TestDecodeEvent(t *testing.T) {
	event, err := kafkaClient.DecodeEvent([]byte(`{"chat_id":-1001,"message_id":7,"sender_id":42,` +
		`"sender_username":"alice","text":"hello","timestamp":"2024-05-01T10:00:00Z","has_media":true}`))
	require.NoError(t, err)

	assert.Equal(t, int64(-1001), event.ChatID)
	assert.Equal(t, int64(7), event.MessageID)
	assert.Equal(t, int64(42), event.SenderID)
	assert.Equal(t, "alice", event.SenderUsername)
	assert.True(t, event.HasMedia)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), event.Timestamp.UTC())
}

func TestDecodeEvent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "не JSON", payload: "not json"},
		{name: "нет chat_id", payload: `{"message_id":1,"text":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kafkaClient.DecodeEvent([]byte(tt.payload))
			require.ErrorIs(t, err, &domainerrors.ErrMalformedEvent{})
		})
	}
}

func TestDecodeEvent_MissingTimestampDefaultsToNow(t *testing.T) {
	before := time.Now()

	event, err := kafkaClient.DecodeEvent([]byte(`{"chat_id":-1001,"sender_id":1}`))
	require.NoError(t, err)

	assert.False(t, event.Timestamp.Before(before))
}

func TestKafkaIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в режиме short")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	ctx := context.Background()

	kafkaContainer, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "Не удалось запустить контейнер Kafka")

	defer func() {
		termCtx, termCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer termCancel()

		if err := kafkaContainer.Terminate(termCtx); err != nil {
			logger.Error("Ошибка при остановке контейнера Kafka", slog.Any("error", err))
		}
	}()

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topicEvents := fmt.Sprintf("test-platform-events-%d", time.Now().UnixNano())
	topicDLQ := fmt.Sprintf("test-dlq-%d", time.Now().UnixNano())

	createCtx, createCancel := context.WithTimeout(ctx, 95*time.Second)
	defer createCancel()

	require.NoError(t, createTopicsAdmin(createCtx, brokers, topicEvents, topicDLQ))

	publisher := kafkaClient.NewEventPublisher(brokers, topicEvents)
	defer publisher.Close()

	consumer := kafkaClient.NewConsumer(brokers, fmt.Sprintf("test-group-%d", time.Now().UnixNano()),
		topicEvents, topicDLQ, logger)
	defer consumer.Close()

	handler := &MockEventHandler{}

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- consumer.Run(consumerCtx, handler)
	}()

	time.Sleep(5 * time.Second)

	rawWriter := &segkafka.Writer{
		Addr:         segkafka.TCP(brokers...),
		Topic:        topicEvents,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: segkafka.RequireOne,
	}
	defer rawWriter.Close()

	sendCtx, sendCancel := context.WithTimeout(ctx, 20*time.Second)
	defer sendCancel()

	require.NoError(t, rawWriter.WriteMessages(sendCtx, segkafka.Message{Value: []byte("broken payload")}))

	event := &models.PlatformEvent{
		ChatID:         -1001234,
		MessageID:      77,
		SenderID:       42,
		SenderUsername: "alice",
		Text:           "deploy done",
		Timestamp:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, publisher.Publish(sendCtx, event))

	require.Eventually(t, func() bool {
		return len(handler.snapshot()) == 1
	}, 20*time.Second, 500*time.Millisecond)

	received := handler.snapshot()[0]
	assert.Equal(t, event.ChatID, received.ChatID)
	assert.Equal(t, event.MessageID, received.MessageID)
	assert.Equal(t, event.Text, received.Text)

	dlqReader := segkafka.NewReader(segkafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topicDLQ,
		Partition: 0,
		MaxWait:   time.Second,
	})
	defer dlqReader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 20*time.Second)
	defer readCancel()

	dlqMsg, err := dlqReader.ReadMessage(readCtx)
	require.NoError(t, err, "Некорректное событие должно попасть в DLQ")
	assert.Equal(t, "broken payload", string(dlqMsg.Value))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Таймаут ожидания завершения консьюмера")
	}
}
