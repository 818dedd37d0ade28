package repository

import (
	"stock-advisor/config"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/ratelimit"

	"gorm.io/gorm"
)

type Repository struct {
	StockRepo          StockRepository
	MarketDataRepo     MarketDataRepository
	RecommendationRepo RecommendationRepository
	CycleReportRepo    CycleReportRepository
	UserTrackingRepo   UserTrackingRepository
	PriceFeedRepo      PriceFeedRepository
	SentimentRepos     []SentimentSourceRepository
	InferenceRepo      InferenceRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) *Repository {
	// One limiter per sentiment source id, shared by every collector for
	// that source.
	limiters := ratelimit.NewLimiterStore(60)

	sentimentRepos := make([]SentimentSourceRepository, 0, len(cfg.Sentiment.Sources))
	for _, src := range cfg.Sentiment.Sources {
		limiters.Register(src.Name, src.MaxRequestPerMinute)
		sentimentRepos = append(sentimentRepos, NewSentimentSourceRepository(src, limiters.GetLimiter(src.Name), log))
	}

	return &Repository{
		StockRepo:          NewStockRepository(db, inmemoryCache),
		MarketDataRepo:     NewMarketDataRepository(db),
		RecommendationRepo: NewRecommendationRepository(db),
		CycleReportRepo:    NewCycleReportRepository(db),
		UserTrackingRepo:   NewUserTrackingRepository(db, inmemoryCache),
		PriceFeedRepo:      NewPriceFeedRepository(cfg, log),
		SentimentRepos:     sentimentRepos,
		InferenceRepo:      NewInferenceRepository(cfg, log),
	}
}
