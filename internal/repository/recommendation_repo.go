package repository

import (
	"context"
	"stock-advisor/internal/model"

	"gorm.io/gorm"
)

type RecommendationRepository interface {
	CreateBulk(ctx context.Context, recommendations []model.Recommendation) error
	Get(ctx context.Context, param model.GetRecommendationsParam) ([]model.Recommendation, error)
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) CreateBulk(ctx context.Context, recommendations []model.Recommendation) error {
	if len(recommendations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(recommendations, 100).Error
}

// Get returns recommendations in their synthesized rank order.
func (r *recommendationRepository) Get(ctx context.Context, param model.GetRecommendationsParam) ([]model.Recommendation, error) {
	query := r.db.WithContext(ctx)

	if param.StockSymbol != "" {
		query = query.Where("stock_symbol = ?", param.StockSymbol)
	}
	if param.CycleID != "" {
		query = query.Where("cycle_id = ?", param.CycleID)
	}
	if param.HoldingPeriod != "" {
		query = query.Where("holding_periods @> ?", `["`+param.HoldingPeriod+`"]`)
	}

	var recommendations []model.Recommendation
	err := query.Order("cycle_id ASC, rank ASC").
		Preload("Sentiment").
		Find(&recommendations).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return recommendations, nil
}
