package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Matthew11K/group-watcher/internal/bot/repository/record"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

const backendName = "REDIS"

type SettingsRepository struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewSettingsRepository(redisURL, password string, db int, key string, logger *slog.Logger) (*SettingsRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &SettingsRepository{
		client: client,
		key:    key,
		logger: logger,
	}, nil
}

func (r *SettingsRepository) Load(ctx context.Context) (models.Settings, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Настройки в Redis не найдены",
				"key", r.key,
			)

			return models.Settings{}, &domainerrors.ErrSettingsNotFound{}
		}

		return models.Settings{}, &domainerrors.ErrStoreRead{Backend: backendName, Cause: err}
	}

	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Settings{}, &domainerrors.ErrStoreRead{Backend: backendName, Cause: err}
	}

	return rec.ToSettings(), nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(record.FromSettings(settings))
	if err != nil {
		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: err}
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: err}
	}

	r.logger.Debug("Настройки сохранены в Redis",
		"key", r.key,
	)

	return nil
}

func (r *SettingsRepository) Close() error {
	return r.client.Close()
}
