package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Matthew11K/group-watcher/internal/bot/clients"
	"github.com/Matthew11K/group-watcher/internal/bot/clients/kafka"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

// runSelftest checks the bot token, DMs the registered operator and, with
// the Kafka transport, publishes an event the running watcher should arm on.
func runSelftest(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	telegramClient, err := clients.NewTelegramClient(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Bot OK: @%s\n", telegramClient.Username())

	manager, store, err := openSettings(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	current := manager.Snapshot()
	if !current.HasOperator() {
		fmt.Fprintln(cmd.OutOrStdout(), "No operator chat registered. Send /start to the bot first.")
	} else {
		chatID := *current.OperatorChatID
		fmt.Fprintf(cmd.OutOrStdout(), "Operator chat: %d\n", chatID)

		line := "Selftest at " + time.Now().Format("2006-01-02 15:04:05")
		if err := telegramClient.SendMessage(ctx, chatID, line); err != nil {
			return fmt.Errorf("не удалось отправить сообщение оператору: %w", err)
		}
	}

	if !strings.EqualFold(cfg.EventTransport, "KAFKA") {
		return nil
	}

	if current.GroupPeerID() == 0 || current.Target == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Group or user not configured, synthetic event skipped.")
		return nil
	}

	text, _ := cmd.Flags().GetString("text")
	if text == "" && len(cfg.Keywords()) > 0 {
		text = cfg.Keywords()[0]
	}

	publisher := kafka.NewEventPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.TopicPlatformEvents)
	defer publisher.Close()

	event := &models.PlatformEvent{
		ChatID:         current.GroupPeerID(),
		SenderID:       current.Target.ID,
		SenderUsername: current.Target.Username,
		Text:           text,
		Timestamp:      time.Now(),
	}

	if err := publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("не удалось опубликовать тестовое событие: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synthetic event published to %s\n", cfg.TopicPlatformEvents)

	return nil
}
