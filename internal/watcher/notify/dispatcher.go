package notify

import (
	"context"
	"log/slog"

	"github.com/Matthew11K/group-watcher/internal/common/metrics"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

type Kind string

const (
	KindReply   Kind = "reply"
	KindPreview Kind = "preview"
	KindTrigger Kind = "trigger"
	KindNag     Kind = "nag"
)

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type SettingsReader interface {
	Snapshot() models.Settings
}

// Dispatcher delivers texts to the registered operator chat.
type Dispatcher struct {
	sender   Sender
	settings SettingsReader
	logger   *slog.Logger
}

func NewDispatcher(sender Sender, settings SettingsReader, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		settings: settings,
		logger:   logger,
	}
}

// Send delivers text to the operator. Failures are logged and returned, but
// callers running a loop are expected to ignore them.
func (d *Dispatcher) Send(ctx context.Context, kind Kind, text string) error {
	s := d.settings.Snapshot()
	if !s.HasOperator() {
		d.logger.Warn("Чат оператора еще не зарегистрирован, сообщение не отправлено", "kind", kind)
		return &domainerrors.ErrOperatorNotRegistered{}
	}

	chatID := *s.OperatorChatID

	err := d.sender.SendMessage(ctx, chatID, text)
	metrics.RecordMessageSent(string(kind), err)

	if err != nil {
		d.logger.Error("Ошибка при отправке сообщения оператору",
			"error", err,
			"chat_id", chatID,
			"kind", kind,
		)

		return err
	}

	return nil
}

// SendAll sends texts in order and stops at the first failure.
func (d *Dispatcher) SendAll(ctx context.Context, kind Kind, texts []string) error {
	for _, text := range texts {
		if err := d.Send(ctx, kind, text); err != nil {
			return err
		}
	}

	return nil
}
