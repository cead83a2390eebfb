package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Matthew11K/group-watcher/internal/bot/repository/file"
	"github.com/Matthew11K/group-watcher/internal/bot/repository/orm"
	redisrepo "github.com/Matthew11K/group-watcher/internal/bot/repository/redis"
	sqlrepo "github.com/Matthew11K/group-watcher/internal/bot/repository/sql"
	"github.com/Matthew11K/group-watcher/internal/config"
	"github.com/Matthew11K/group-watcher/internal/database"
	"github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/watcher/settings"
	"github.com/Matthew11K/group-watcher/pkg/txs"
)

type Factory struct {
	config *config.Config
	logger *slog.Logger
}

func NewFactory(config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CreateSettingsRepository opens the backend selected by STORE_BACKEND. The
// returned closer releases its connections.
func (f *Factory) CreateSettingsRepository(ctx context.Context) (settings.Repository, io.Closer, error) {
	switch f.config.StoreBackend {
	case config.FileStore, "":
		f.logger.Info("Создание файлового хранилища настроек",
			"path", f.config.StatePath,
		)

		return file.NewSettingsRepository(f.config.StatePath), nopCloser{}, nil
	case config.RedisStore:
		f.logger.Info("Создание Redis хранилища настроек")

		repo, err := redisrepo.NewSettingsRepository(
			f.config.RedisURL,
			f.config.RedisPassword,
			f.config.RedisDB,
			f.config.RedisKey,
			f.logger,
		)
		if err != nil {
			return nil, nil, err
		}

		return repo, repo, nil
	case config.SQLStore, config.SquirrelStore:
		return f.createPostgresRepository(ctx)
	default:
		return nil, nil, &errors.ErrUnknownStoreBackend{Backend: string(f.config.StoreBackend)}
	}
}

func (f *Factory) createPostgresRepository(ctx context.Context) (settings.Repository, io.Closer, error) {
	if err := database.ApplyMigrations(f.config.MigrationsPath, f.config.DatabaseURL, f.logger); err != nil {
		return nil, nil, err
	}

	db, err := database.NewPostgresDB(ctx, f.config, f.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	txManager := txs.NewTxManager(db.Pool, f.logger)

	if f.config.StoreBackend == config.SquirrelStore {
		f.logger.Info("Создание ORM (Squirrel) хранилища настроек")
		return orm.NewSettingsRepository(txManager), db, nil
	}

	f.logger.Info("Создание SQL хранилища настроек")

	return sqlrepo.NewSettingsRepository(txManager), db, nil
}
