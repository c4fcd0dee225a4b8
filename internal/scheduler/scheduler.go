package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/bareqalyusr/bnpl-service/internal/config"
	"github.com/bareqalyusr/bnpl-service/internal/service"
)

// Scheduler runs the periodic maintenance jobs: expiring stale purchase
// requests, flipping overdue installments and sending payment reminders.
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
	log  *logrus.Logger
}

// New builds the scheduler with jobs registered on the configured schedules.
func New(cfg *config.Config, svc *service.Service, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}

	if _, err := s.cron.AddFunc(cfg.SweepSchedule, func() {
		ctx := context.Background()
		s.svc.ExpirePendingTransactions(ctx)
		s.svc.MarkOverdueSchedules(ctx)
	}); err != nil {
		return nil, err
	}

	if _, err := s.cron.AddFunc(cfg.ReminderSchedule, func() {
		s.svc.SendPaymentReminders(context.Background())
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}
