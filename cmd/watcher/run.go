package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Matthew11K/group-watcher/internal/bot/clients"
	"github.com/Matthew11K/group-watcher/internal/bot/clients/kafka"
	"github.com/Matthew11K/group-watcher/internal/bot/domain"
	"github.com/Matthew11K/group-watcher/internal/bot/repository"
	botservice "github.com/Matthew11K/group-watcher/internal/bot/service"
	"github.com/Matthew11K/group-watcher/internal/bot/telegram"
	"github.com/Matthew11K/group-watcher/internal/common/metrics"
	"github.com/Matthew11K/group-watcher/internal/config"
	domainclients "github.com/Matthew11K/group-watcher/internal/domain/clients"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/scheduler"
	"github.com/Matthew11K/group-watcher/internal/watcher/alert"
	"github.com/Matthew11K/group-watcher/internal/watcher/nag"
	"github.com/Matthew11K/group-watcher/internal/watcher/notify"
	"github.com/Matthew11K/group-watcher/internal/watcher/settings"
	"github.com/Matthew11K/group-watcher/internal/watcher/trigger"
	"github.com/Matthew11K/group-watcher/pkg"
)

var botCommands = []domain.BotCommand{
	{Command: "start", Description: "Register this chat"},
	{Command: "help", Description: "Show commands"},
	{Command: "stop", Description: "Stop alerts"},
	{Command: "status", Description: "Show status"},
	{Command: "interval", Description: "Set nag interval in minutes"},
	{Command: "setgroup", Description: "Set the watched group"},
	{Command: "listgroups", Description: "List joined groups"},
	{Command: "usegroup", Description: "Use a group by peer_id"},
	{Command: "setuser", Description: "Set the watched user"},
	{Command: "reset", Description: "Restore startup defaults"},
	{Command: "test", Description: "Start test alerts"},
}

// loadConfig reads and validates the configuration; invalid credentials end
// the process before any loop starts.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Некорректная конфигурация", "error", err)
		return nil, nil, err
	}

	return cfg, appLogger, nil
}

func openSettings(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*settings.Manager, io.Closer, error) {
	repo, closer, err := repository.NewFactory(cfg, appLogger).CreateSettingsRepository(ctx)
	if err != nil {
		appLogger.Error("Ошибка при создании хранилища настроек", "error", err)
		return nil, nil, fmt.Errorf("ошибка создания хранилища настроек: %w", err)
	}

	manager := settings.NewManager(repo, cfg.NagIntervalSeconds, appLogger)
	manager.Load(ctx)

	if chatID := cfg.OperatorChatOverride(); chatID != nil {
		manager.OverrideOperator(*chatID)
		appLogger.Info("Чат оператора задан через BOT_CHAT_ID", "chat_id", *chatID)
	}

	return manager, closer, nil
}

func newEventSource(
	cfg *config.Config,
	platform *clients.PlatformClient,
	appLogger *slog.Logger,
) (domainclients.EventSource, error) {
	switch strings.ToUpper(cfg.EventTransport) {
	case "HTTP", "":
		return clients.NewHTTPEventSource(platform, cfg.EventPollTimeout, cfg.BotPollBackoff, appLogger), nil
	case "KAFKA":
		return kafka.NewConsumer(
			strings.Split(cfg.KafkaBrokers, ","),
			cfg.KafkaGroupID,
			cfg.TopicPlatformEvents,
			cfg.TopicDeadLetterQueue,
			appLogger,
		), nil
	default:
		return nil, &domainerrors.ErrUnknownEventTransport{Transport: cfg.EventTransport}
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func runWatcher(cmd *cobra.Command, _ []string) (err error) {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, store, err := openSettings(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	telegramClient, err := clients.NewTelegramClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при создании Telegram клиента", "error", err)
		return err
	}

	if err := telegramClient.SetMyCommands(ctx, botCommands); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота", "error", err)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}

	platform := clients.NewPlatformClient(cfg, appLogger)
	machine := alert.NewMachine()
	dispatcher := notify.NewDispatcher(telegramClient, manager, appLogger)

	bot := botservice.NewBotService(manager, machine, platform, botservice.Defaults{
		GroupInvite:    cfg.GroupInvite,
		TargetUsername: cfg.TargetUsername,
	}, appLogger)
	bot.Restore(ctx)

	if !manager.Snapshot().HasOperator() {
		appLogger.Warn("Чат оператора не зарегистрирован, отправьте боту /start")
	}

	events, err := newEventSource(cfg, platform, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при выборе транспорта событий", "error", err)
		return err
	}

	defer func() {
		err = multierr.Append(err, events.Close())
	}()

	evaluator := trigger.NewEvaluator(manager, machine, dispatcher, cfg.Keywords(), cfg.TargetUsername, appLogger)

	nagService := nag.NewService(manager, machine, dispatcher,
		cfg.NagMessageTemplate, cfg.MaxNags, cfg.TargetUsername, appLogger)
	nagScheduler := scheduler.NewScheduler(nagService, cfg.NagTickInterval, appLogger)

	poller := telegram.NewPoller(telegramClient, bot, dispatcher, telegram.PollerConfig{
		PollTimeout: cfg.BotPollTimeout,
		Backoff:     cfg.BotPollBackoff,
		BatchPause:  cfg.BotBatchPause,
	}, appLogger)

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, func() error {
		return ctx.Err()
	}, appLogger)

	if err := nagScheduler.Start(ctx); err != nil {
		return err
	}
	defer nagScheduler.Stop()

	appLogger.Info("Наблюдатель запущен",
		"bot", telegramClient.Username(),
		"transport", cfg.EventTransport,
		"store", cfg.StoreBackend,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return events.Run(gctx, evaluator) })
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error {
		if err := metricsServer.Start(gctx); err != nil {
			appLogger.Error("Сервер метрик недоступен", "error", err)
		}

		return nil
	})

	err = g.Wait()

	appLogger.Info("Наблюдатель остановлен")

	return err
}
