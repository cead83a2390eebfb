package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/Matthew11K/group-watcher/internal/bot/domain"
	"github.com/Matthew11K/group-watcher/internal/config"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
)

type TelegramClient struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *slog.Logger
}

// contextDoer binds every Bot API request to the process lifetime so that a
// pending long poll is cancelled on shutdown.
type contextDoer struct {
	ctx    context.Context
	client *http.Client
}

func (d *contextDoer) Do(req *http.Request) (*http.Response, error) {
	return d.client.Do(req.WithContext(d.ctx))
}

func NewTelegramClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*TelegramClient, error) {
	endpoint := tgbotapi.APIEndpoint
	if cfg.BotAPIBaseURL != "" {
		endpoint = cfg.BotAPIBaseURL + "/bot%s/%s"
	}

	doer := &contextDoer{
		ctx:    ctx,
		client: &http.Client{Timeout: cfg.BotPollTimeout + cfg.ExternalRequestTimeout},
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, doer)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Telegram клиента: %w", err)
	}

	perSecond := cfg.SendRatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	logger.Info("Telegram бот авторизован", "username", bot.Self.UserName)

	return &TelegramClient{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 3),
		logger:  logger,
	}, nil
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domainerrors.ErrSendFailed{ChatID: chatID, Cause: err}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		return &domainerrors.ErrSendFailed{ChatID: chatID, Cause: err}
	}

	return nil
}

func (c *TelegramClient) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]domain.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updateConfig := tgbotapi.NewUpdate(offset)
	updateConfig.Timeout = int(timeout.Seconds())
	updateConfig.AllowedUpdates = []string{"message", "edited_message"}

	updates, err := c.bot.GetUpdates(updateConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении обновлений: %w", err)
	}

	domainUpdates := make([]domain.Update, 0, len(updates))

	for i := range updates {
		domainUpdates = append(domainUpdates, domain.Update{
			UpdateID: int64(updates[i].UpdateID),
			Message:  convertMessage(&updates[i]),
		})
	}

	return domainUpdates, nil
}

func convertMessage(update *tgbotapi.Update) *domain.Message {
	message := update.Message

	edited := false
	if message == nil {
		message = update.EditedMessage
		edited = true
	}

	if message == nil || message.Chat == nil {
		return nil
	}

	result := &domain.Message{
		MessageID: int64(message.MessageID),
		Text:      message.Text,
		Chat:      domain.Chat{ID: message.Chat.ID},
		Edited:    edited,
	}

	if message.From != nil {
		result.From = domain.User{
			ID:        message.From.ID,
			Username:  message.From.UserName,
			FirstName: message.From.FirstName,
			LastName:  message.From.LastName,
		}
	}

	return result
}

func (c *TelegramClient) SetMyCommands(_ context.Context, commands []domain.BotCommand) error {
	botAPICommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botAPICommands = append(botAPICommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(botAPICommands...)); err != nil {
		return fmt.Errorf("ошибка при установке команд бота: %w", err)
	}

	return nil
}

// Username is the bot account name confirmed by getMe at construction.
func (c *TelegramClient) Username() string {
	return c.bot.Self.UserName
}
