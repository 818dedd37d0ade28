package pipeline

import (
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func riskConfig() config.Risk {
	return config.Risk{
		VolatilityWindow:       30,
		MediumVolThreshold:     0.02,
		HighVolThreshold:       0.05,
		LowConfidenceThreshold: 0.5,
	}
}

func flatHistory(n int) []dto.PricePoint {
	history := make([]dto.PricePoint, n)
	for i := range history {
		history[i] = dto.PricePoint{Close: 100, Timestamp: time.Now().Add(time.Duration(-n+i) * time.Hour)}
	}
	return history
}

func swingingHistory() []dto.PricePoint {
	closes := []float64{100, 112, 95, 110, 90, 108, 94}
	history := make([]dto.PricePoint, len(closes))
	for i, c := range closes {
		history[i] = dto.PricePoint{Close: c}
	}
	return history
}

func TestRiskAssessor_Assess(t *testing.T) {
	tests := []struct {
		name          string
		history       []dto.PricePoint
		confidence    float64
		wantTier      string
		wantEscalated bool
	}{
		{
			name:       "calm prices with confident prediction stay low",
			history:    flatHistory(10),
			confidence: 0.85,
			wantTier:   dto.RiskTierLow,
		},
		{
			name:       "volatile prices with confident prediction are high",
			history:    swingingHistory(),
			confidence: 0.85,
			wantTier:   dto.RiskTierHigh,
		},
		{
			name:          "low confidence escalates low to medium",
			history:       flatHistory(10),
			confidence:    0.30,
			wantTier:      dto.RiskTierMedium,
			wantEscalated: true,
		},
		{
			name:          "low confidence keeps high at high",
			history:       swingingHistory(),
			confidence:    0.10,
			wantTier:      dto.RiskTierHigh,
			wantEscalated: true,
		},
		{
			name:       "insufficient history is never low",
			history:    flatHistory(1),
			confidence: 0.90,
			wantTier:   dto.RiskTierMedium,
		},
	}

	assessor := NewRiskAssessor(riskConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assessor.Assess("ACME", "cycle-1", tt.history, tt.confidence)

			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantEscalated, got.Escalated)
			assert.Equal(t, "cycle-1", got.CycleID)
		})
	}
}

// Low-confidence predictions must never surface as low risk, whatever the
// price series looks like.
func TestRiskAssessor_LowConfidenceNeverLow(t *testing.T) {
	assessor := NewRiskAssessor(riskConfig())

	histories := [][]dto.PricePoint{flatHistory(2), flatHistory(50), swingingHistory(), nil}
	for _, history := range histories {
		got := assessor.Assess("ACME", "cycle-1", history, 0.49)
		assert.NotEqual(t, dto.RiskTierLow, got.Tier)
	}
}

func TestRealizedVolatility(t *testing.T) {
	assert.Zero(t, RealizedVolatility(nil))
	assert.Zero(t, RealizedVolatility(flatHistory(1)))
	assert.Zero(t, RealizedVolatility(flatHistory(20)))
	assert.Greater(t, RealizedVolatility(swingingHistory()), 0.0)
}
