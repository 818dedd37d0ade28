package service

import (
	"context"
	"stock-advisor/internal/model"
	"stock-advisor/internal/repository"
)

// ReportService exposes cycle reports for operational visibility.
type ReportService interface {
	List(ctx context.Context, limit int) ([]model.CycleReport, error)
	GetByCycleID(ctx context.Context, cycleID string) (*model.CycleReport, error)
}

type reportService struct {
	cycleReportRepo repository.CycleReportRepository
}

func NewReportService(repo *repository.Repository) ReportService {
	return &reportService{cycleReportRepo: repo.CycleReportRepo}
}

func (r *reportService) List(ctx context.Context, limit int) ([]model.CycleReport, error) {
	return r.cycleReportRepo.List(ctx, limit)
}

func (r *reportService) GetByCycleID(ctx context.Context, cycleID string) (*model.CycleReport, error) {
	return r.cycleReportRepo.GetByCycleID(ctx, cycleID)
}
