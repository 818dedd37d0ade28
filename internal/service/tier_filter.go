package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/common"
	"stock-advisor/pkg/logger"
)

// ErrUnknownUser is returned when the tracking collaborator has no record
// for the requested user.
var ErrUnknownUser = errors.New("no tracking state for user")

// TierFilterService bounds recommendation visibility per subscription tier.
// It is a pure read-time projection and never mutates persisted records.
type TierFilterService interface {
	GetRecommendationsForUser(ctx context.Context, req dto.GetRecommendationsRequest) ([]model.Recommendation, error)
}

type tierFilterService struct {
	cfg                *config.Config
	log                *logger.Logger
	recommendationRepo repository.RecommendationRepository
	cycleReportRepo    repository.CycleReportRepository
	userTrackingRepo   repository.UserTrackingRepository
}

func NewTierFilterService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) TierFilterService {
	return &tierFilterService{
		cfg:                cfg,
		log:                log,
		recommendationRepo: repo.RecommendationRepo,
		cycleReportRepo:    repo.CycleReportRepo,
		userTrackingRepo:   repo.UserTrackingRepo,
	}
}

func (t *tierFilterService) GetRecommendationsForUser(ctx context.Context, req dto.GetRecommendationsRequest) ([]model.Recommendation, error) {
	if req.HoldingPeriod != "" && !dto.ValidHoldingPeriod(req.HoldingPeriod) {
		return nil, fmt.Errorf("unknown holding period %q", req.HoldingPeriod)
	}

	tracking, err := t.userTrackingRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user tracking state: %w", err)
	}
	if tracking == nil {
		return nil, fmt.Errorf("%w %s", ErrUnknownUser, req.UserID)
	}

	cycleID := req.CycleID
	if cycleID == "" {
		latest, err := t.cycleReportRepo.GetLatestFinished(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve latest cycle: %w", err)
		}
		if latest == nil {
			return nil, nil
		}
		cycleID = latest.CycleID
	}

	recommendations, err := t.recommendationRepo.Get(ctx, model.GetRecommendationsParam{
		CycleID:       cycleID,
		HoldingPeriod: req.HoldingPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}

	return FilterByTier(recommendations, tracking, t.cfg.Tier.FreeMaxTrackedStocks), nil
}

// FilterByTier projects the ranked sequence through the user's tier. Premium
// passes through unchanged; free is reduced to the intersection with the
// user's tracked symbols, relative order preserved. The tracked set is capped
// upstream by the tracking collaborator; the cap here is a bound, not an
// enforcement point.
func FilterByTier(recommendations []model.Recommendation, tracking *model.UserTracking, freeCap int) []model.Recommendation {
	if tracking.Tier == common.TierPremium {
		return recommendations
	}

	tracked := trackedSet(tracking, freeCap)
	filtered := make([]model.Recommendation, 0, len(tracked))
	for _, recommendation := range recommendations {
		if _, ok := tracked[recommendation.StockSymbol]; ok {
			filtered = append(filtered, recommendation)
		}
	}
	return filtered
}

func trackedSet(tracking *model.UserTracking, freeCap int) map[string]struct{} {
	var symbols []string
	if len(tracking.TrackedSymbols) > 0 {
		_ = json.Unmarshal(tracking.TrackedSymbols, &symbols)
	}

	limit := freeCap
	if tracking.MaxTracked > 0 && tracking.MaxTracked < limit {
		limit = tracking.MaxTracked
	}
	if limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}

	set := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		set[symbol] = struct{}{}
	}
	return set
}
