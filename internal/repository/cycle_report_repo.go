package repository

import (
	"context"
	"stock-advisor/internal/model"

	"gorm.io/gorm"
)

type CycleReportRepository interface {
	Create(ctx context.Context, report *model.CycleReport) error
	Update(ctx context.Context, report *model.CycleReport) error
	GetByCycleID(ctx context.Context, cycleID string) (*model.CycleReport, error)
	GetLatestFinished(ctx context.Context) (*model.CycleReport, error)
	List(ctx context.Context, limit int) ([]model.CycleReport, error)
}

type cycleReportRepository struct {
	db *gorm.DB
}

func NewCycleReportRepository(db *gorm.DB) CycleReportRepository {
	return &cycleReportRepository{db: db}
}

func (c *cycleReportRepository) Create(ctx context.Context, report *model.CycleReport) error {
	return c.db.WithContext(ctx).Create(report).Error
}

func (c *cycleReportRepository) Update(ctx context.Context, report *model.CycleReport) error {
	return c.db.WithContext(ctx).Save(report).Error
}

func (c *cycleReportRepository) GetByCycleID(ctx context.Context, cycleID string) (*model.CycleReport, error) {
	var report model.CycleReport
	err := c.db.WithContext(ctx).Where("cycle_id = ?", cycleID).First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// GetLatestFinished returns the newest cycle that produced recommendations,
// meaning Completed or CompletedPartial.
func (c *cycleReportRepository) GetLatestFinished(ctx context.Context) (*model.CycleReport, error) {
	var report model.CycleReport
	err := c.db.WithContext(ctx).
		Where("status IN ?", []string{model.CycleStatusCompleted, model.CycleStatusCompletedPartial}).
		Order("started_at DESC").
		First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (c *cycleReportRepository) List(ctx context.Context, limit int) ([]model.CycleReport, error) {
	if limit <= 0 {
		limit = 20
	}
	var reports []model.CycleReport
	err := c.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
