package service

import (
	"stock-advisor/config"
	"stock-advisor/internal/pipeline"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
)

type Service struct {
	OrchestratorService OrchestratorService
	SchedulerService    SchedulerService
	TierFilterService   TierFilterService
	ReportService       ReportService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	priceCollector := pipeline.NewPriceCollector(cfg, log, repo.PriceFeedRepo)

	sentimentCollectors := make([]*pipeline.SentimentCollector, 0, len(repo.SentimentRepos))
	for _, sourceRepo := range repo.SentimentRepos {
		sentimentCollectors = append(sentimentCollectors, pipeline.NewSentimentCollector(log, sourceRepo, cfg.Scheduler.CycleInterval))
	}

	orchestrator := NewOrchestratorService(
		cfg,
		log,
		repo,
		priceCollector,
		sentimentCollectors,
		pipeline.NewSentimentAggregator(cfg.Scheduler.CycleInterval),
		pipeline.NewPredictionAdapter(cfg, log, repo.InferenceRepo),
		pipeline.NewRiskAssessor(cfg.Risk),
		pipeline.NewSynthesizer(),
	)

	return &Service{
		OrchestratorService: orchestrator,
		SchedulerService:    NewSchedulerService(cfg, log, orchestrator),
		TierFilterService:   NewTierFilterService(cfg, log, repo),
		ReportService:       NewReportService(repo),
	}
}
