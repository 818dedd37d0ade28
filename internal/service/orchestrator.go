package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"stock-advisor/internal/pipeline"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/utils"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// ErrCycleOverlap is returned when a trigger fires while the previous cycle
// has not reached a terminal state. The trigger is skipped, never queued.
var ErrCycleOverlap = errors.New("previous cycle still running, trigger skipped")

type OrchestratorService interface {
	RunCycle(ctx context.Context) (*model.CycleReport, error)
	IsRunning() bool
}

type orchestratorService struct {
	cfg                 *config.Config
	log                 *logger.Logger
	stockRepo           repository.StockRepository
	marketDataRepo      repository.MarketDataRepository
	recommendationRepo  repository.RecommendationRepository
	cycleReportRepo     repository.CycleReportRepository
	priceCollector      *pipeline.PriceCollector
	sentimentCollectors []*pipeline.SentimentCollector
	aggregator          *pipeline.SentimentAggregator
	predictionAdapter   *pipeline.PredictionAdapter
	riskAssessor        *pipeline.RiskAssessor
	synthesizer         *pipeline.Synthesizer
	running             atomic.Bool
}

func NewOrchestratorService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	priceCollector *pipeline.PriceCollector,
	sentimentCollectors []*pipeline.SentimentCollector,
	aggregator *pipeline.SentimentAggregator,
	predictionAdapter *pipeline.PredictionAdapter,
	riskAssessor *pipeline.RiskAssessor,
	synthesizer *pipeline.Synthesizer,
) OrchestratorService {
	return &orchestratorService{
		cfg:                 cfg,
		log:                 log,
		stockRepo:           repo.StockRepo,
		marketDataRepo:      repo.MarketDataRepo,
		recommendationRepo:  repo.RecommendationRepo,
		cycleReportRepo:     repo.CycleReportRepo,
		priceCollector:      priceCollector,
		sentimentCollectors: sentimentCollectors,
		aggregator:          aggregator,
		predictionAdapter:   predictionAdapter,
		riskAssessor:        riskAssessor,
		synthesizer:         synthesizer,
	}
}

func (o *orchestratorService) IsRunning() bool {
	return o.running.Load()
}

// RunCycle drives one full evaluation cycle over the stock universe. Per-stock
// failures are isolated and recorded; only a zero-success cycle is Failed.
func (o *orchestratorService) RunCycle(ctx context.Context) (*model.CycleReport, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrCycleOverlap
	}
	defer o.running.Store(false)

	cycleID := uuid.NewString()
	startedAt := utils.TimeNowUTC()

	report := &model.CycleReport{
		CycleID:   cycleID,
		Status:    model.CycleStatusScheduled,
		StartedAt: startedAt,
	}
	if err := o.cycleReportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create cycle report: %w", err)
	}

	report.Status = model.CycleStatusRunning
	if err := o.cycleReportRepo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to mark cycle running: %w", err)
	}

	o.log.InfoContext(ctx, "Cycle started",
		logger.StringField("cycle_id", cycleID),
		logger.IntField("batch_size", o.cfg.Scheduler.BatchSize),
		logger.IntField("max_concurrency", o.cfg.Scheduler.MaxConcurrency),
	)

	cycleCtx, cancel := context.WithTimeout(ctx, o.cfg.Scheduler.TimeoutDuration)
	defer cancel()

	stocks, err := o.stockRepo.GetUniverse(cycleCtx)
	if err != nil {
		o.log.ErrorContextWithAlert(ctx, "Failed to load stock universe",
			logger.ErrorField(err), logger.StringField("cycle_id", cycleID))
		return o.finalize(ctx, report, nil, nil)
	}

	var (
		mu              sync.Mutex
		outcomes        []model.StockOutcome
		recommendations []model.Recommendation
		semaphore       = make(chan struct{}, o.cfg.Scheduler.MaxConcurrency)
		weights         = o.sourceWeights()
	)

	for _, batch := range partition(stocks, o.cfg.Scheduler.BatchSize) {
		var wg sync.WaitGroup

		for _, stock := range batch {
			// Past the hard cycle ceiling: unstarted work is marked failed
			// for this cycle rather than extending indefinitely.
			if !utils.ShouldContinue(cycleCtx, o.log) {
				mu.Lock()
				outcomes = append(outcomes, model.StockOutcome{
					Symbol: stock.Symbol,
					Status: model.StockOutcomeFailed,
					Reason: "cycle deadline exceeded before start",
				})
				mu.Unlock()
				continue
			}

			wg.Add(1)
			semaphore <- struct{}{}
			utils.GoSafe(func() {
				defer func() {
					<-semaphore
					wg.Done()
				}()

				recommendation, outcome := o.processStock(cycleCtx, stock, cycleID, weights)

				mu.Lock()
				outcomes = append(outcomes, outcome)
				if recommendation != nil {
					recommendations = append(recommendations, *recommendation)
				}
				mu.Unlock()
			})
		}

		wg.Wait()
	}

	recommendations = pipeline.Rank(recommendations)
	if err := o.recommendationRepo.CreateBulk(ctx, recommendations); err != nil {
		o.log.ErrorContextWithAlert(ctx, "Failed to persist recommendations",
			logger.ErrorField(err), logger.StringField("cycle_id", cycleID))
		// Persisted nothing for this cycle; every synthesized stock becomes
		// a failure in the report.
		for i := range outcomes {
			if outcomes[i].Status == model.StockOutcomeSuccess {
				outcomes[i].Status = model.StockOutcomeFailed
				outcomes[i].Reason = "recommendation persistence failed"
			}
		}
	}

	return o.finalize(ctx, report, stocks, outcomes)
}

// processStock runs the per-stock pipeline. A price-collect or model
// invocation failure fails the stock; everything else degrades gracefully.
func (o *orchestratorService) processStock(ctx context.Context, stock model.Stock, cycleID string, weights map[string]float64) (*model.Recommendation, model.StockOutcome) {
	now := utils.TimeNowUTC()
	outcome := model.StockOutcome{Symbol: stock.Symbol, Status: model.StockOutcomeFailed}

	price, err := o.priceCollector.Collect(ctx, stock.Symbol)
	if err != nil {
		o.log.WarnContext(ctx, "Price collection failed, stock skipped this cycle",
			logger.StringField("symbol", stock.Symbol),
			logger.StringField("cycle_id", cycleID),
			logger.ErrorField(err),
		)
		outcome.Reason = err.Error()
		return nil, outcome
	}

	snapshot := &model.MarketSnapshot{
		StockSymbol: stock.Symbol,
		CycleID:     cycleID,
		Price:       price.Price,
		Volume:      price.Volume,
		Timestamp:   price.Timestamp,
	}
	if err := o.marketDataRepo.CreateSnapshot(ctx, snapshot); err != nil {
		outcome.Reason = fmt.Sprintf("failed to persist market snapshot: %v", err)
		return nil, outcome
	}

	observations := o.collectSentiment(ctx, stock.Symbol, now)
	o.persistObservations(ctx, cycleID, observations)

	aggregated := o.aggregator.Aggregate(stock.Symbol, cycleID, observations, weights, now)
	// An unpersisted aggregate has no ID, so a recommendation built on it
	// would reference neither a stored sentiment nor the unavailable marker.
	if err := o.marketDataRepo.CreateAggregatedSentiment(ctx, aggregated); err != nil {
		outcome.Reason = fmt.Sprintf("failed to persist aggregated sentiment: %v", err)
		return nil, outcome
	}

	prediction, holdingPeriods, err := o.predictionAdapter.Predict(ctx, stock.Symbol, cycleID, buildFeatures(price, aggregated))
	if err != nil {
		o.log.WarnContext(ctx, "Model invocation failed, stock skipped this cycle",
			logger.StringField("symbol", stock.Symbol),
			logger.StringField("cycle_id", cycleID),
			logger.ErrorField(err),
		)
		outcome.Reason = err.Error()
		return nil, outcome
	}
	if err := o.marketDataRepo.CreatePrediction(ctx, prediction); err != nil {
		outcome.Reason = fmt.Sprintf("failed to persist prediction: %v", err)
		return nil, outcome
	}

	risk := o.riskAssessor.Assess(stock.Symbol, cycleID, price.History, prediction.Confidence)
	if err := o.marketDataRepo.CreateRiskAssessment(ctx, risk); err != nil {
		outcome.Reason = fmt.Sprintf("failed to persist risk assessment: %v", err)
		return nil, outcome
	}

	recommendation, err := o.synthesizer.Synthesize(prediction, aggregated, risk, holdingPeriods)
	if err != nil {
		outcome.Reason = err.Error()
		return nil, outcome
	}

	outcome.Status = model.StockOutcomeSuccess
	return recommendation, outcome
}

// collectSentiment fans out across all configured sources concurrently.
// Failures never abort the fan-out; each source yields an observation either
// way so aggregation sees the full picture.
func (o *orchestratorService) collectSentiment(ctx context.Context, symbol string, now time.Time) []dto.SourceObservation {
	var (
		mu           sync.Mutex
		observations = make([]dto.SourceObservation, 0, len(o.sentimentCollectors))
	)

	g, gCtx := errgroup.WithContext(ctx)
	for _, collector := range o.sentimentCollectors {
		collector := collector
		g.Go(func() error {
			observation := collector.Collect(gCtx, symbol, now)
			mu.Lock()
			observations = append(observations, observation)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return observations
}

func (o *orchestratorService) persistObservations(ctx context.Context, cycleID string, observations []dto.SourceObservation) {
	rows := make([]model.SentimentObservation, 0, len(observations))
	for _, observation := range observations {
		rows = append(rows, model.SentimentObservation{
			StockSymbol: observation.Symbol,
			CycleID:     cycleID,
			Source:      observation.Source,
			Score:       observation.Score,
			Timestamp:   observation.Timestamp,
			Status:      observation.Status,
		})
	}
	if err := o.marketDataRepo.CreateObservations(ctx, rows); err != nil {
		o.log.WarnContext(ctx, "Failed to persist sentiment observations",
			logger.StringField("cycle_id", cycleID), logger.ErrorField(err))
	}
}

func (o *orchestratorService) finalize(ctx context.Context, report *model.CycleReport, stocks []model.Stock, outcomes []model.StockOutcome) (*model.CycleReport, error) {
	successCount := 0
	for _, outcome := range outcomes {
		if outcome.Status == model.StockOutcomeSuccess {
			successCount++
		}
	}

	report.TotalStocks = len(stocks)
	report.SuccessCount = successCount
	report.FailedCount = len(outcomes) - successCount
	if len(outcomes) > 0 {
		report.SuccessRate = float64(successCount) / float64(len(outcomes))
	}
	report.StockOutcomes = outcomesJSON(outcomes)
	report.CompletedAt = sql.NullTime{Time: utils.TimeNowUTC(), Valid: true}

	switch {
	case len(outcomes) > 0 && successCount == len(outcomes):
		report.Status = model.CycleStatusCompleted
	case successCount > 0:
		report.Status = model.CycleStatusCompletedPartial
	default:
		report.Status = model.CycleStatusFailed
	}

	// Finalization must survive the cycle deadline.
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := o.cycleReportRepo.Update(finalizeCtx, report); err != nil {
		o.log.ErrorContextWithAlert(ctx, "Failed to finalize cycle report",
			logger.ErrorField(err), logger.StringField("cycle_id", report.CycleID))
		return report, err
	}

	o.log.InfoContext(ctx, "Cycle finished",
		logger.StringField("cycle_id", report.CycleID),
		logger.StringField("status", report.Status),
		logger.IntField("total", report.TotalStocks),
		logger.IntField("succeeded", report.SuccessCount),
		logger.IntField("failed", report.FailedCount),
	)

	return report, nil
}

func (o *orchestratorService) sourceWeights() map[string]float64 {
	weights := make(map[string]float64, len(o.sentimentCollectors))
	for _, collector := range o.sentimentCollectors {
		weights[collector.Source()] = collector.Weight()
	}
	return weights
}

// buildFeatures assembles the feature vector from already-computed inputs.
// Sentiment is included only when it is actually available; absent is not
// the same as neutral.
func buildFeatures(price *dto.PriceObservation, sentiment *model.AggregatedSentiment) map[string]float64 {
	features := map[string]float64{
		"price":  price.Price,
		"volume": float64(price.Volume),
	}
	if len(price.History) > 1 {
		features["volatility"] = pipeline.RealizedVolatility(price.History)
	}
	if sentiment != nil && !sentiment.Unavailable {
		features["sentiment_score"] = sentiment.Score
	}
	return features
}

func partition(stocks []model.Stock, batchSize int) [][]model.Stock {
	if batchSize <= 0 {
		batchSize = len(stocks)
	}
	var batches [][]model.Stock
	for start := 0; start < len(stocks); start += batchSize {
		end := start + batchSize
		if end > len(stocks) {
			end = len(stocks)
		}
		batches = append(batches, stocks[start:end])
	}
	return batches
}

func outcomesJSON(outcomes []model.StockOutcome) datatypes.JSON {
	raw, err := json.Marshal(outcomes)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
