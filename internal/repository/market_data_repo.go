package repository

import (
	"context"
	"stock-advisor/internal/model"

	"gorm.io/gorm"
)

// MarketDataRepository persists the per-cycle append-only records the
// pipeline derives for one stock. Nothing here mutates existing rows.
type MarketDataRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error
	CreateObservations(ctx context.Context, observations []model.SentimentObservation) error
	CreateAggregatedSentiment(ctx context.Context, aggregated *model.AggregatedSentiment) error
	CreatePrediction(ctx context.Context, prediction *model.PredictionResult) error
	CreateRiskAssessment(ctx context.Context, assessment *model.RiskAssessment) error
}

type marketDataRepository struct {
	db *gorm.DB
}

func NewMarketDataRepository(db *gorm.DB) MarketDataRepository {
	return &marketDataRepository{db: db}
}

func (m *marketDataRepository) CreateSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error {
	return m.db.WithContext(ctx).Create(snapshot).Error
}

func (m *marketDataRepository) CreateObservations(ctx context.Context, observations []model.SentimentObservation) error {
	if len(observations) == 0 {
		return nil
	}
	return m.db.WithContext(ctx).CreateInBatches(observations, 100).Error
}

func (m *marketDataRepository) CreateAggregatedSentiment(ctx context.Context, aggregated *model.AggregatedSentiment) error {
	return m.db.WithContext(ctx).Create(aggregated).Error
}

func (m *marketDataRepository) CreatePrediction(ctx context.Context, prediction *model.PredictionResult) error {
	return m.db.WithContext(ctx).Create(prediction).Error
}

func (m *marketDataRepository) CreateRiskAssessment(ctx context.Context, assessment *model.RiskAssessment) error {
	return m.db.WithContext(ctx).Create(assessment).Error
}
