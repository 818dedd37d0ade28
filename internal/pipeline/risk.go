package pipeline

import (
	"math"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
)

// RiskAssessor derives a discrete risk tier from realized volatility and
// prediction confidence. Fully deterministic.
type RiskAssessor struct {
	cfg config.Risk
}

func NewRiskAssessor(cfg config.Risk) *RiskAssessor {
	return &RiskAssessor{cfg: cfg}
}

func (r *RiskAssessor) Assess(symbol, cycleID string, history []dto.PricePoint, confidence float64) *model.RiskAssessment {
	volatility := RealizedVolatility(trailing(history, r.cfg.VolatilityWindow))

	var tier string
	switch {
	case len(history) < 2:
		// Unknown volatility is not low risk.
		tier = dto.RiskTierMedium
	case volatility >= r.cfg.HighVolThreshold:
		tier = dto.RiskTierHigh
	case volatility >= r.cfg.MediumVolThreshold:
		tier = dto.RiskTierMedium
	default:
		tier = dto.RiskTierLow
	}

	// Low-confidence predictions are never reported as low risk, regardless
	// of how calm the price series looks.
	escalated := false
	if confidence < r.cfg.LowConfidenceThreshold {
		escalated = true
		tier = EscalateTier(tier)
	}

	return &model.RiskAssessment{
		StockSymbol: symbol,
		CycleID:     cycleID,
		Tier:        tier,
		Volatility:  volatility,
		Confidence:  confidence,
		Escalated:   escalated,
	}
}

// EscalateTier bumps a tier one level up. High stays high.
func EscalateTier(tier string) string {
	switch tier {
	case dto.RiskTierLow:
		return dto.RiskTierMedium
	case dto.RiskTierMedium:
		return dto.RiskTierHigh
	default:
		return dto.RiskTierHigh
	}
}

// RealizedVolatility is the sample standard deviation of log returns over
// the given closes, newest last.
func RealizedVolatility(history []dto.PricePoint) float64 {
	if len(history) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev, curr := history[i-1].Close, history[i].Close
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		variance += (ret - mean) * (ret - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance)
}

func trailing(history []dto.PricePoint, window int) []dto.PricePoint {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}
