package repository

import (
	"context"
	"stock-advisor/internal/model"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/common"
	"time"

	"gorm.io/gorm"
)

type StockRepository interface {
	GetUniverse(ctx context.Context) ([]model.Stock, error)
	GetBySymbol(ctx context.Context, symbol string) (*model.Stock, error)
}

type stockRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewStockRepository(db *gorm.DB, inmemoryCache cache.Cache) StockRepository {
	return &stockRepository{db: db, cache: inmemoryCache}
}

// GetUniverse returns the full stock universe ordered by universe rank. The
// catalog changes rarely, so results are cached for a few minutes.
func (s *stockRepository) GetUniverse(ctx context.Context) ([]model.Stock, error) {
	if cached, found := cache.GetFromCache[[]model.Stock](common.KeyStockUniverse); found {
		return cached, nil
	}

	var stocks []model.Stock
	err := s.db.WithContext(ctx).
		Order("universe_rank ASC, symbol ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}

	s.cache.Set(common.KeyStockUniverse, stocks, 5*time.Minute)
	return stocks, nil
}

func (s *stockRepository) GetBySymbol(ctx context.Context, symbol string) (*model.Stock, error) {
	var stock model.Stock
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}
