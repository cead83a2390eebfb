package redis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	redisrepo "github.com/Matthew11K/group-watcher/internal/bot/repository/redis"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

func TestRedisSettingsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	redisC, redisPort := startRedisContainer(t)
	defer func() {
		if err := redisC.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке Redis контейнера: %v", err)
		}
	}()

	repo, err := redisrepo.NewSettingsRepository("localhost:"+redisPort, "", 0, "watcher:test", logger)
	require.NoError(t, err)

	defer repo.Close()

	ctx := context.Background()

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, &domainerrors.ErrSettingsNotFound{})

	chatID := int64(31337)
	settings := models.Settings{
		OperatorChatID:     &chatID,
		Group:              &models.GroupRef{Title: "Ops", PeerID: -1001234},
		Target:             &models.TargetUser{ID: 555, Username: "alice"},
		NagIntervalSeconds: 150,
		IntervalSet:        true,
	}

	require.NoError(t, repo.Save(ctx, settings))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	settings.Target = nil
	settings.NagIntervalSeconds = 45
	require.NoError(t, repo.Save(ctx, settings))

	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded.Target)
	assert.Equal(t, 45, loaded.NagIntervalSeconds)
}

func startRedisContainer(t *testing.T) (container testcontainers.Container, port string) {
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	mappedPort, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return redisC, mappedPort.Port()
}
