package service

import (
	"context"
	"errors"
	"stock-advisor/config"
	"stock-advisor/internal/model"
	"stock-advisor/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService owns the recurring cycle trigger. One trigger drives one
// orchestrator run; a trigger that fires during a running cycle is skipped
// and logged, never queued.
type SchedulerService interface {
	Start() error
	Stop()
	TriggerNow(ctx context.Context) (*model.CycleReport, error)
}

type schedulerService struct {
	cfg          *config.Config
	log          *logger.Logger
	orchestrator OrchestratorService
	cron         *cron.Cron
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, orchestrator OrchestratorService) SchedulerService {
	return &schedulerService{
		cfg:          cfg,
		log:          log,
		orchestrator: orchestrator,
		cron:         cron.New(),
	}
}

func (s *schedulerService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Scheduler.CronExpression, s.onTrigger)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Cycle scheduler started",
		logger.StringField("cron_expression", s.cfg.Scheduler.CronExpression),
	)
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Cycle scheduler stopped")
}

func (s *schedulerService) onTrigger() {
	ctx := logger.NewContext(context.Background(), s.log)

	report, err := s.orchestrator.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, ErrCycleOverlap) {
			s.log.WarnContext(ctx, "Cycle trigger skipped, previous cycle still running")
			return
		}
		s.log.ErrorContextWithAlert(ctx, "Cycle run failed", logger.ErrorField(err))
		return
	}

	if report.Status != model.CycleStatusCompleted {
		s.log.WarnContext(ctx, "Cycle finished degraded",
			logger.StringField("cycle_id", report.CycleID),
			logger.StringField("status", report.Status),
			logger.Float64Field("success_rate", report.SuccessRate),
		)
	}
}

// TriggerNow runs a cycle outside the cron cadence, used by the manual
// trigger endpoint and the one-off CLI command. Overlap rules still apply.
func (s *schedulerService) TriggerNow(ctx context.Context) (*model.CycleReport, error) {
	return s.orchestrator.RunCycle(ctx)
}
