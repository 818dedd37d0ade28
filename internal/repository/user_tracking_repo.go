package repository

import (
	"context"
	"fmt"
	"stock-advisor/internal/model"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/common"
	"time"

	"gorm.io/gorm"
)

// UserTrackingRepository reads the tracking collaborator's records. This core
// never writes them; cap enforcement on tracked symbols happens upstream.
type UserTrackingRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.UserTracking, error)
}

type userTrackingRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewUserTrackingRepository(db *gorm.DB, inmemoryCache cache.Cache) UserTrackingRepository {
	return &userTrackingRepository{db: db, cache: inmemoryCache}
}

func (u *userTrackingRepository) GetByUserID(ctx context.Context, userID string) (*model.UserTracking, error) {
	key := fmt.Sprintf(common.KeyUserTracking, userID)
	if cached, found := cache.GetFromCache[*model.UserTracking](key); found {
		return cached, nil
	}

	var tracking model.UserTracking
	err := u.db.WithContext(ctx).Where("user_id = ?", userID).First(&tracking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	u.cache.Set(key, &tracking, time.Minute)
	return &tracking, nil
}
