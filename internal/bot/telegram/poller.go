package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/Matthew11K/group-watcher/internal/bot/domain"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/internal/watcher/notify"
)

type CommandProcessor interface {
	ProcessCommand(ctx context.Context, command *models.Command) []string
}

type ReplySender interface {
	SendAll(ctx context.Context, kind notify.Kind, texts []string) error
}

type PollerConfig struct {
	PollTimeout time.Duration
	Backoff     time.Duration
	BatchPause  time.Duration
}

// Poller drains bot updates and feeds them to the command processor.
// Replies are routed to the operator chat, not the chat the command came from.
type Poller struct {
	telegramClient domain.TelegramClientAPI
	processor      CommandProcessor
	replies        ReplySender
	cfg            PollerConfig
	offset         int
	logger         *slog.Logger
}

func NewPoller(
	telegramClient domain.TelegramClientAPI,
	processor CommandProcessor,
	replies ReplySender,
	cfg PollerConfig,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		telegramClient: telegramClient,
		processor:      processor,
		replies:        replies,
		cfg:            cfg,
		logger:         logger,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Запуск Telegram поллера", "poll_timeout", p.cfg.PollTimeout)

	for {
		if ctx.Err() != nil {
			p.logger.Info("Получен сигнал остановки поллера")
			return nil
		}

		updates, err := p.telegramClient.GetUpdates(ctx, p.offset, p.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			p.logger.Warn("Ошибка при получении обновлений", "error", err, "offset", p.offset)

			if !sleep(ctx, p.cfg.Backoff) {
				return nil
			}

			continue
		}

		for i := range updates {
			p.offset = int(updates[i].UpdateID) + 1
			p.processUpdate(ctx, &updates[i])
		}

		if !sleep(ctx, p.cfg.BatchPause) {
			return nil
		}
	}
}

// Offset is the id of the next update to fetch.
func (p *Poller) Offset() int {
	return p.offset
}

func (p *Poller) processUpdate(ctx context.Context, update *domain.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	p.logger.Debug("Получено сообщение",
		"chat_id", msg.Chat.ID,
		"user_id", msg.From.ID,
		"username", msg.From.Username,
		"edited", msg.Edited,
	)

	command := models.ParseCommand(msg.Chat.ID, msg.From.ID, msg.From.Username, msg.Text)

	replies := p.processor.ProcessCommand(ctx, command)
	if len(replies) == 0 {
		return
	}

	if err := p.replies.SendAll(ctx, notify.KindReply, replies); err != nil {
		p.logger.Warn("Ответ на команду не доставлен",
			"error", err,
			"command", command.Type,
		)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
