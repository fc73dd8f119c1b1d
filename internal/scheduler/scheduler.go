package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"fraudstream/internal/repository"
)

// Scheduler runs the periodic housekeeping jobs of the pipeline driver,
// currently a recurring alerts/errors summary.
type Scheduler struct {
	cron   *cron.Cron
	store  repository.AlertRepository
	logger *slog.Logger
}

func New(store repository.AlertRepository, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		logger: logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 30s", s.logSummary); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) logSummary() {
	stats, err := s.store.Stats(context.Background())
	if err != nil {
		s.logger.Error("failed to read pipeline stats", slog.String("error", err.Error()))
		return
	}

	attrs := []any{
		slog.Int64("alerts", stats.Alerts),
		slog.Int64("errors", stats.Errors),
	}
	for fraudType, count := range stats.ByFraudType {
		attrs = append(attrs, slog.Int64(string(fraudType), count))
	}
	s.logger.Info("pipeline summary", attrs...)
}
