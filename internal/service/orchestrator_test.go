package service

import (
	"context"
	"encoding/json"
	"errors"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeStockRepo struct {
	stocks []model.Stock
	err    error
}

func (f *fakeStockRepo) GetUniverse(ctx context.Context) ([]model.Stock, error) {
	return f.stocks, f.err
}

func (f *fakeStockRepo) GetBySymbol(ctx context.Context, symbol string) (*model.Stock, error) {
	for _, stock := range f.stocks {
		if stock.Symbol == symbol {
			return &stock, nil
		}
	}
	return nil, nil
}

type fakeMarketDataRepo struct {
	mu           sync.Mutex
	snapshots    []model.MarketSnapshot
	observations []model.SentimentObservation
	aggregates   []model.AggregatedSentiment
	predictions  []model.PredictionResult
	assessments  []model.RiskAssessment
	nextID       uint
	aggregateErr error
}

func (f *fakeMarketDataRepo) CreateSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, *snapshot)
	return nil
}

func (f *fakeMarketDataRepo) CreateObservations(ctx context.Context, observations []model.SentimentObservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observations = append(f.observations, observations...)
	return nil
}

func (f *fakeMarketDataRepo) CreateAggregatedSentiment(ctx context.Context, aggregated *model.AggregatedSentiment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aggregateErr != nil {
		return f.aggregateErr
	}
	f.nextID++
	aggregated.ID = f.nextID
	f.aggregates = append(f.aggregates, *aggregated)
	return nil
}

func (f *fakeMarketDataRepo) CreatePrediction(ctx context.Context, prediction *model.PredictionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.predictions = append(f.predictions, *prediction)
	return nil
}

func (f *fakeMarketDataRepo) CreateRiskAssessment(ctx context.Context, assessment *model.RiskAssessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assessments = append(f.assessments, *assessment)
	return nil
}

type fakeRecommendationRepo struct {
	mu      sync.Mutex
	created []model.Recommendation
}

func (f *fakeRecommendationRepo) CreateBulk(ctx context.Context, recommendations []model.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, recommendations...)
	return nil
}

func (f *fakeRecommendationRepo) Get(ctx context.Context, param model.GetRecommendationsParam) ([]model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Recommendation
	for _, recommendation := range f.created {
		if param.CycleID != "" && recommendation.CycleID != param.CycleID {
			continue
		}
		out = append(out, recommendation)
	}
	return out, nil
}

type fakeCycleReportRepo struct {
	mu      sync.Mutex
	reports map[string]model.CycleReport
}

func newFakeCycleReportRepo() *fakeCycleReportRepo {
	return &fakeCycleReportRepo{reports: map[string]model.CycleReport{}}
}

func (f *fakeCycleReportRepo) Create(ctx context.Context, report *model.CycleReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[report.CycleID] = *report
	return nil
}

func (f *fakeCycleReportRepo) Update(ctx context.Context, report *model.CycleReport) error {
	return f.Create(ctx, report)
}

func (f *fakeCycleReportRepo) GetByCycleID(ctx context.Context, cycleID string) (*model.CycleReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report, ok := f.reports[cycleID]; ok {
		return &report, nil
	}
	return nil, nil
}

func (f *fakeCycleReportRepo) GetLatestFinished(ctx context.Context) (*model.CycleReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.CycleReport
	for cycleID := range f.reports {
		report := f.reports[cycleID]
		if report.Status != model.CycleStatusCompleted && report.Status != model.CycleStatusCompletedPartial {
			continue
		}
		if latest == nil || report.StartedAt.After(latest.StartedAt) {
			latest = &report
		}
	}
	return latest, nil
}

func (f *fakeCycleReportRepo) List(ctx context.Context, limit int) ([]model.CycleReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CycleReport
	for _, report := range f.reports {
		out = append(out, report)
	}
	return out, nil
}

type fakePriceFeedRepo struct {
	failing map[string]bool
	stall   map[string]bool
	gate    chan struct{}
}

func (f *fakePriceFeedRepo) Get(ctx context.Context, symbol string) (*dto.PriceObservation, error) {
	if f.stall[symbol] {
		<-ctx.Done()
		return nil, dto.NewCollectError("price_feed", dto.FailureTimeout, ctx.Err())
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, dto.NewCollectError("price_feed", dto.FailureTimeout, ctx.Err())
		}
	}
	if f.failing[symbol] {
		return nil, dto.NewCollectError("price_feed", dto.FailureNetworkError, errors.New("connection refused"))
	}
	return &dto.PriceObservation{
		Symbol:    symbol,
		Price:     100,
		Volume:    5000,
		Timestamp: time.Now().UTC(),
		History: []dto.PricePoint{
			{Close: 99}, {Close: 100}, {Close: 101}, {Close: 100},
		},
	}, nil
}

type fakeSentimentRepo struct {
	name    string
	weight  float64
	failing bool
}

func (f *fakeSentimentRepo) SourceName() string { return f.name }
func (f *fakeSentimentRepo) Weight() float64    { return f.weight }

func (f *fakeSentimentRepo) Get(ctx context.Context, symbol string) (*dto.SentimentSourceResponse, error) {
	if f.failing {
		return nil, dto.NewCollectError(f.name, dto.FailureTimeout, context.DeadlineExceeded)
	}
	return &dto.SentimentSourceResponse{
		Symbol:    symbol,
		Score:     0.4,
		Timestamp: time.Now().Unix(),
	}, nil
}

type fakeInferenceRepo struct {
	failing map[string]bool
}

func (f *fakeInferenceRepo) Predict(ctx context.Context, req dto.InferenceRequest) (*dto.InferenceResponse, error) {
	if f.failing[req.Symbol] {
		return nil, dto.NewCollectError("model_inference", dto.FailureNetworkError, errors.New("endpoint down"))
	}
	return &dto.InferenceResponse{
		Symbol:       req.Symbol,
		Score:        0.8,
		ValidationR2: 0.7,
		ModelVersion: "v1.0",
	}, nil
}

type fakeUserTrackingRepo struct {
	tracking *model.UserTracking
}

func (f *fakeUserTrackingRepo) GetByUserID(ctx context.Context, userID string) (*model.UserTracking, error) {
	return f.tracking, nil
}

// ---- harness ----

type testEnv struct {
	cfg            *config.Config
	services       *Service
	marketData     *fakeMarketDataRepo
	recommendation *fakeRecommendationRepo
	cycleReport    *fakeCycleReportRepo
	priceFeed      *fakePriceFeedRepo
	inference      *fakeInferenceRepo
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scheduler = config.Scheduler{
		CronExpression:  "0 * * * *",
		CycleInterval:   time.Hour,
		BatchSize:       2,
		MaxConcurrency:  2,
		TimeoutDuration: 5 * time.Second,
	}
	cfg.PriceFeed.MaxRetries = 1
	cfg.PriceFeed.RetryBackoff = time.Millisecond
	cfg.Inference.BuyThreshold = 0.6
	cfg.Inference.SellThreshold = -0.6
	cfg.Risk = config.Risk{
		VolatilityWindow:       30,
		MediumVolThreshold:     0.02,
		HighVolThreshold:       0.05,
		LowConfidenceThreshold: 0.5,
	}
	cfg.Tier.FreeMaxTrackedStocks = 5
	return cfg
}

func newTestEnv(t *testing.T, symbols []string, priceFeed *fakePriceFeedRepo, inference *fakeInferenceRepo) *testEnv {
	t.Helper()

	log, err := logger.New("error", "console")
	require.NoError(t, err)

	stocks := make([]model.Stock, 0, len(symbols))
	for i, symbol := range symbols {
		stocks = append(stocks, model.Stock{Symbol: symbol, Name: symbol, Sector: "tech", UniverseRank: i + 1})
	}

	env := &testEnv{
		cfg:            testConfig(),
		marketData:     &fakeMarketDataRepo{},
		recommendation: &fakeRecommendationRepo{},
		cycleReport:    newFakeCycleReportRepo(),
		priceFeed:      priceFeed,
		inference:      inference,
	}

	repo := &repository.Repository{
		StockRepo:          &fakeStockRepo{stocks: stocks},
		MarketDataRepo:     env.marketData,
		RecommendationRepo: env.recommendation,
		CycleReportRepo:    env.cycleReport,
		UserTrackingRepo:   &fakeUserTrackingRepo{},
		PriceFeedRepo:      priceFeed,
		SentimentRepos: []repository.SentimentSourceRepository{
			&fakeSentimentRepo{name: "news", weight: 0.6},
			&fakeSentimentRepo{name: "social", weight: 0.4, failing: true},
		},
		InferenceRepo: inference,
	}

	env.services = NewService(env.cfg, log, repo)
	return env
}

// ---- tests ----

func TestOrchestrator_RunCycle_AllSucceed(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA", "BRAVO", "CHARLIE"},
		&fakePriceFeedRepo{}, &fakeInferenceRepo{})

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.CycleStatusCompleted, report.Status)
	assert.Equal(t, 3, report.TotalStocks)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 0, report.FailedCount)
	assert.InDelta(t, 1.0, report.SuccessRate, 1e-9)
	assert.True(t, report.CompletedAt.Valid)

	assert.Len(t, env.recommendation.created, 3)

	// Deterministic ranking: identical confidence and risk everywhere, so
	// symbols decide.
	assert.Equal(t, "ALPHA", env.recommendation.created[0].StockSymbol)
	assert.Equal(t, 1, env.recommendation.created[0].Rank)
	assert.Equal(t, "BRAVO", env.recommendation.created[1].StockSymbol)
	assert.Equal(t, "CHARLIE", env.recommendation.created[2].StockSymbol)
}

// Every persisted derived record must carry the cycle's id; nothing mixes
// across cycles.
func TestOrchestrator_RunCycle_CycleIDConsistency(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA", "BRAVO"},
		&fakePriceFeedRepo{}, &fakeInferenceRepo{})

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, report.CycleID)

	for _, snapshot := range env.marketData.snapshots {
		assert.Equal(t, report.CycleID, snapshot.CycleID)
	}
	for _, observation := range env.marketData.observations {
		assert.Equal(t, report.CycleID, observation.CycleID)
	}
	for _, aggregated := range env.marketData.aggregates {
		assert.Equal(t, report.CycleID, aggregated.CycleID)
	}
	for _, prediction := range env.marketData.predictions {
		assert.Equal(t, report.CycleID, prediction.CycleID)
	}
	for _, assessment := range env.marketData.assessments {
		assert.Equal(t, report.CycleID, assessment.CycleID)
	}
	for _, recommendation := range env.recommendation.created {
		assert.Equal(t, report.CycleID, recommendation.CycleID)
	}
}

func TestOrchestrator_RunCycle_PartialFailure(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA", "BRAVO", "CHARLIE"},
		&fakePriceFeedRepo{failing: map[string]bool{"BRAVO": true}}, &fakeInferenceRepo{})

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.CycleStatusCompletedPartial, report.Status)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailedCount)

	// The failed stock produced no recommendation and no snapshot, and did
	// not block the others.
	for _, recommendation := range env.recommendation.created {
		assert.NotEqual(t, "BRAVO", recommendation.StockSymbol)
	}
	for _, snapshot := range env.marketData.snapshots {
		assert.NotEqual(t, "BRAVO", snapshot.StockSymbol)
	}
	assert.Len(t, env.recommendation.created, 2)
}

func TestOrchestrator_RunCycle_ModelFailureSkipsStock(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA", "BRAVO"},
		&fakePriceFeedRepo{}, &fakeInferenceRepo{failing: map[string]bool{"ALPHA": true}})

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.CycleStatusCompletedPartial, report.Status)
	require.Len(t, env.recommendation.created, 1)
	assert.Equal(t, "BRAVO", env.recommendation.created[0].StockSymbol)
}

func TestOrchestrator_RunCycle_AllFail(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA", "BRAVO"},
		&fakePriceFeedRepo{failing: map[string]bool{"ALPHA": true, "BRAVO": true}}, &fakeInferenceRepo{})

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.CycleStatusFailed, report.Status)
	assert.Zero(t, report.SuccessCount)
	assert.Empty(t, env.recommendation.created)
}

func TestOrchestrator_RunCycle_OverlapSkipped(t *testing.T) {
	gate := make(chan struct{})
	env := newTestEnv(t, []string{"ALPHA"},
		&fakePriceFeedRepo{gate: gate}, &fakeInferenceRepo{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := env.services.OrchestratorService.RunCycle(context.Background())
		firstDone <- err
	}()

	// Wait until the first cycle holds the running flag.
	require.Eventually(t, func() bool {
		return env.services.OrchestratorService.IsRunning()
	}, time.Second, 5*time.Millisecond)

	_, err := env.services.OrchestratorService.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrCycleOverlap)

	close(gate)
	require.NoError(t, <-firstDone)

	// The skipped trigger left exactly one cycle report behind.
	reports, err := env.cycleReport.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestOrchestrator_RunCycle_SentimentDegradation(t *testing.T) {
	// The "social" fake always fails; aggregation must still deliver via
	// the surviving source rather than dropping the stock.
	env := newTestEnv(t, []string{"ALPHA"}, &fakePriceFeedRepo{}, &fakeInferenceRepo{})

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.CycleStatusCompleted, report.Status)

	require.Len(t, env.marketData.aggregates, 1)
	aggregated := env.marketData.aggregates[0]
	assert.False(t, aggregated.Unavailable)
	assert.InDelta(t, 0.4, aggregated.Score, 1e-9)

	statuses := map[string]string{}
	for _, observation := range env.marketData.observations {
		statuses[observation.Source] = observation.Status
	}
	assert.Equal(t, dto.CollectionStatusOK, statuses["news"])
	assert.Equal(t, dto.CollectionStatusFailed, statuses["social"])
}

// A recommendation must trace to a stored aggregate or carry the unavailable
// marker. When the aggregate cannot be persisted the stock fails instead of
// producing a recommendation that references nothing.
func TestOrchestrator_RunCycle_SentimentPersistFailureFailsStock(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA", "BRAVO"},
		&fakePriceFeedRepo{}, &fakeInferenceRepo{})
	env.marketData.aggregateErr = errors.New("insert rejected")

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.CycleStatusFailed, report.Status)
	assert.Empty(t, env.recommendation.created)
	assert.Empty(t, env.marketData.aggregates)

	var outcomes []model.StockOutcome
	require.NoError(t, json.Unmarshal(report.StockOutcomes, &outcomes))
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.Equal(t, model.StockOutcomeFailed, outcome.Status)
		assert.Contains(t, outcome.Reason, "aggregated sentiment")
	}
}

func TestOrchestrator_RunCycle_DeadlineMarksUnstartedFailed(t *testing.T) {
	// Batch size 2: ALPHA succeeds quickly, BRAVO stalls until the cycle
	// deadline, CHARLIE sits in the next batch and never starts.
	env := newTestEnv(t, []string{"ALPHA", "BRAVO", "CHARLIE"},
		&fakePriceFeedRepo{stall: map[string]bool{"BRAVO": true}}, &fakeInferenceRepo{})
	env.cfg.Scheduler.TimeoutDuration = 150 * time.Millisecond

	report, err := env.services.OrchestratorService.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.CycleStatusCompletedPartial, report.Status)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 2, report.FailedCount)

	var outcomes []model.StockOutcome
	require.NoError(t, json.Unmarshal(report.StockOutcomes, &outcomes))
	reasons := map[string]model.StockOutcome{}
	for _, outcome := range outcomes {
		reasons[outcome.Symbol] = outcome
	}

	assert.Equal(t, model.StockOutcomeSuccess, reasons["ALPHA"].Status)
	assert.Equal(t, model.StockOutcomeFailed, reasons["BRAVO"].Status)
	assert.Contains(t, reasons["BRAVO"].Reason, "timeout")
	assert.Equal(t, model.StockOutcomeFailed, reasons["CHARLIE"].Status)
	assert.Equal(t, "cycle deadline exceeded before start", reasons["CHARLIE"].Reason)
}

func TestTierFilter_UnknownUserIsTypedError(t *testing.T) {
	env := newTestEnv(t, []string{"ALPHA"}, &fakePriceFeedRepo{}, &fakeInferenceRepo{})

	_, err := env.services.TierFilterService.GetRecommendationsForUser(context.Background(),
		dto.GetRecommendationsRequest{UserID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestScheduler_TriggerNowPropagatesOverlap(t *testing.T) {
	gate := make(chan struct{})
	env := newTestEnv(t, []string{"ALPHA"},
		&fakePriceFeedRepo{gate: gate}, &fakeInferenceRepo{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := env.services.SchedulerService.TriggerNow(context.Background())
		firstDone <- err
	}()

	require.Eventually(t, func() bool {
		return env.services.OrchestratorService.IsRunning()
	}, time.Second, 5*time.Millisecond)

	_, err := env.services.SchedulerService.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrCycleOverlap)

	close(gate)
	require.NoError(t, <-firstDone)
}
