package nag

import (
	"context"
	"log/slog"
	"time"

	"github.com/Matthew11K/group-watcher/internal/common/metrics"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/internal/watcher/notify"
)

type SettingsReader interface {
	Snapshot() models.Settings
}

type Machine interface {
	TryNag(now time.Time, interval time.Duration, maxNags int) models.NagDecision
}

type Notifier interface {
	Send(ctx context.Context, kind notify.Kind, text string) error
}

// Service sends at most one reminder per nag interval while an alert is active.
type Service struct {
	settings         SettingsReader
	machine          Machine
	notifier         Notifier
	template         string
	maxNags          int
	fallbackUsername string
	logger           *slog.Logger
	now              func() time.Time
}

func NewService(
	settings SettingsReader,
	machine Machine,
	notifier Notifier,
	template string,
	maxNags int,
	fallbackUsername string,
	logger *slog.Logger,
) *Service {
	return &Service{
		settings:         settings,
		machine:          machine,
		notifier:         notifier,
		template:         template,
		maxNags:          maxNags,
		fallbackUsername: fallbackUsername,
		logger:           logger,
		now:              time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Tick is one nag-loop iteration. Without a registered operator the cycle
// is left untouched so the first reminder goes out once /start arrives.
func (s *Service) Tick(ctx context.Context) {
	current := s.settings.Snapshot()
	if !current.HasOperator() {
		return
	}

	interval := time.Duration(current.NagIntervalSeconds) * time.Second

	decision := s.machine.TryNag(s.now(), interval, s.maxNags)
	if !decision.Send {
		return
	}

	metrics.RecordNag(false)

	s.logger.Info("Отправка напоминания",
		"cycle_id", decision.CycleID,
		"nag_count", decision.Count,
	)

	text := notify.RenderNag(s.template, notify.Who(current, s.fallbackUsername), notify.Where(current))
	_ = s.notifier.Send(ctx, notify.KindNag, text)

	if decision.Capped {
		metrics.RecordNag(true)

		s.logger.Info("Достигнут лимит напоминаний",
			"cycle_id", decision.CycleID,
			"max_nags", s.maxNags,
		)

		_ = s.notifier.Send(ctx, notify.KindNag, notify.MaxNagsText)
	}
}
