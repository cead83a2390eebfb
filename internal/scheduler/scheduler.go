package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type Job interface {
	Tick(ctx context.Context)
}

// Scheduler runs a job on a fixed cadence. Runs never overlap: a tick that
// fires while the previous one is still sending is skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	logger    *slog.Logger
	interval  time.Duration
}

func NewScheduler(job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	return &Scheduler{
		scheduler: scheduler,
		job:       job,
		logger:    logger,
		interval:  interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Запуск цикла напоминаний",
		"interval", s.interval.String(),
	)

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}

		s.job.Tick(ctx)
	})
	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика",
			"error", err,
		)

		return err
	}

	s.scheduler.StartAsync()

	return nil
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка цикла напоминаний")
	s.scheduler.Stop()
}
