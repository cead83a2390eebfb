package clients

import (
	"context"
	"log/slog"
	"time"

	domainclients "github.com/Matthew11K/group-watcher/internal/domain/clients"
)

// HTTPEventSource long-polls the gateway event feed.
type HTTPEventSource struct {
	client  *PlatformClient
	timeout time.Duration
	backoff time.Duration
	logger  *slog.Logger
}

func NewHTTPEventSource(client *PlatformClient, timeout, backoff time.Duration, logger *slog.Logger) *HTTPEventSource {
	return &HTTPEventSource{
		client:  client,
		timeout: timeout,
		backoff: backoff,
		logger:  logger,
	}
}

func (s *HTTPEventSource) Run(ctx context.Context, handler domainclients.EventHandler) error {
	s.logger.Info("Запуск получения событий платформы", "transport", "HTTP")

	var offset int64

	for {
		if ctx.Err() != nil {
			s.logger.Info("Остановка получения событий платформы")
			return nil
		}

		events, next, err := s.client.PollEvents(ctx, offset, s.timeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}

			s.logger.Error("Ошибка при получении событий платформы", "error", err)

			select {
			case <-ctx.Done():
			case <-time.After(s.backoff):
			}

			continue
		}

		for i := range events {
			if err := handler.HandleEvent(ctx, &events[i]); err != nil {
				s.logger.Error("Ошибка при обработке события платформы",
					"error", err,
					"chat_id", events[i].ChatID,
					"message_id", events[i].MessageID,
				)
			}
		}

		offset = next
	}
}

func (s *HTTPEventSource) Close() error {
	return nil
}
