package trigger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Matthew11K/group-watcher/internal/common/metrics"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/internal/watcher/notify"
)

type Outcome string

const (
	OutcomeQualified   Outcome = "qualified"
	OutcomeNoGroup     Outcome = "no_group"
	OutcomeOtherChat   Outcome = "other_chat"
	OutcomeNoTarget    Outcome = "no_target"
	OutcomeOtherSender Outcome = "other_sender"
	OutcomeNoKeyword   Outcome = "no_keyword"
)

type SettingsReader interface {
	Snapshot() models.Settings
}

type Armer interface {
	Arm(reason string, now time.Time) models.Alert
}

type Notifier interface {
	Send(ctx context.Context, kind notify.Kind, text string) error
}

// Evaluate decides whether event should arm the alert. keywords must be
// lowercase; an empty list accepts any text.
func Evaluate(s models.Settings, keywords []string, event *models.PlatformEvent) Outcome {
	if s.Group == nil || s.Group.PeerID == 0 {
		return OutcomeNoGroup
	}

	if event.ChatID != s.Group.PeerID {
		return OutcomeOtherChat
	}

	if s.Target == nil || (s.Target.ID == 0 && s.Target.Username == "") {
		return OutcomeNoTarget
	}

	if !fromTarget(s.Target, event) {
		return OutcomeOtherSender
	}

	if !containsKeyword(event.Text, keywords) {
		return OutcomeNoKeyword
	}

	return OutcomeQualified
}

// fromTarget matches by id. The username comparison is only reachable when
// the platform did not report a sender id.
func fromTarget(target *models.TargetUser, event *models.PlatformEvent) bool {
	if event.SenderID != 0 {
		return target.ID != 0 && event.SenderID == target.ID
	}

	return target.Username != "" && event.SenderUsername != "" &&
		strings.EqualFold(target.Username, event.SenderUsername)
}

func containsKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	body := strings.ToLower(text)

	for _, k := range keywords {
		if strings.Contains(body, k) {
			return true
		}
	}

	return false
}

// Evaluator arms the alert machine for qualifying platform events and sends
// the preview and trigger notices.
type Evaluator struct {
	settings         SettingsReader
	machine          Armer
	notifier         Notifier
	keywords         []string
	fallbackUsername string
	logger           *slog.Logger
	now              func() time.Time
}

func NewEvaluator(
	settings SettingsReader,
	machine Armer,
	notifier Notifier,
	keywords []string,
	fallbackUsername string,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		settings:         settings,
		machine:          machine,
		notifier:         notifier,
		keywords:         keywords,
		fallbackUsername: fallbackUsername,
		logger:           logger,
		now:              time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

func (e *Evaluator) HandleEvent(ctx context.Context, event *models.PlatformEvent) error {
	s := e.settings.Snapshot()

	outcome := Evaluate(s, e.keywords, event)
	metrics.RecordPlatformEvent(string(outcome))

	if outcome != OutcomeQualified {
		e.logger.Debug("Событие платформы пропущено",
			"outcome", outcome,
			"chat_id", event.ChatID,
			"sender_id", event.SenderID,
		)

		return nil
	}

	user := s.TargetUsername()
	if user == "" {
		user = e.fallbackUsername
	}

	group := notify.Where(s)

	when := event.Timestamp
	if when.IsZero() {
		when = e.now()
	}

	armed := e.machine.Arm(notify.TriggerReason(user, group, when), e.now())
	metrics.RecordTrigger()

	e.logger.Info("Сработал триггер, запущен цикл оповещений",
		"cycle_id", armed.CycleID,
		"chat_id", event.ChatID,
		"message_id", event.MessageID,
	)

	if s.HasOperator() {
		_ = e.notifier.Send(ctx, notify.KindPreview, notify.RenderPreview(event, user, group, when))
	}

	_ = e.notifier.Send(ctx, notify.KindTrigger, notify.RenderTrigger(user, group, when))

	return nil
}
