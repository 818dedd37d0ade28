package pipeline

import (
	"context"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/utils"
)

// PredictionAdapter wraps the trained model's inference endpoint and
// normalizes its output into the domain type. Training and feature
// engineering happen upstream; this component only adapts.
type PredictionAdapter struct {
	cfg  *config.Config
	log  *logger.Logger
	repo repository.InferenceRepository
}

func NewPredictionAdapter(cfg *config.Config, log *logger.Logger, repo repository.InferenceRepository) *PredictionAdapter {
	return &PredictionAdapter{cfg: cfg, log: log, repo: repo}
}

// Predict calls the inference endpoint and maps the raw output onto a
// signal and a confidence. Returns the holding periods the model computed
// the signal for alongside the result.
func (p *PredictionAdapter) Predict(ctx context.Context, symbol, cycleID string, features map[string]float64) (*model.PredictionResult, []string, error) {
	resp, err := p.repo.Predict(ctx, dto.InferenceRequest{Symbol: symbol, Features: features})
	if err != nil {
		return nil, nil, err
	}

	holdingPeriods := resp.HoldingPeriods
	if len(holdingPeriods) == 0 {
		holdingPeriods = []string{dto.HoldingPeriodDaily, dto.HoldingPeriodWeekly, dto.HoldingPeriodMonthly}
	}

	return &model.PredictionResult{
		StockSymbol:  symbol,
		CycleID:      cycleID,
		Signal:       MapSignal(resp.Score, p.cfg.Inference.BuyThreshold, p.cfg.Inference.SellThreshold),
		Confidence:   NormalizeConfidence(resp.ValidationR2),
		ModelVersion: resp.ModelVersion,
	}, holdingPeriods, nil
}

// NormalizeConfidence clamps validation R-squared to [0, 1]. A model
// reporting negative R-squared yields confidence 0, never a negative value.
func NormalizeConfidence(validationR2 float64) float64 {
	return utils.Clamp(validationR2, 0, 1)
}

// MapSignal applies the externally-supplied threshold table deterministically.
func MapSignal(score, buyThreshold, sellThreshold float64) string {
	switch {
	case score >= buyThreshold:
		return dto.SignalBuy
	case score <= sellThreshold:
		return dto.SignalSell
	default:
		return dto.SignalHold
	}
}
