package pipeline

import (
	"stock-advisor/internal/dto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name         string
		validationR2 float64
		want         float64
	}{
		{name: "negative R2 clamps to zero", validationR2: -0.35, want: 0},
		{name: "in-range R2 passes through", validationR2: 0.72, want: 0.72},
		{name: "R2 above one clamps to one", validationR2: 1.4, want: 1},
		{name: "zero stays zero", validationR2: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeConfidence(tt.validationR2))
		})
	}
}

func TestMapSignal(t *testing.T) {
	const buyThreshold, sellThreshold = 0.6, -0.6

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{name: "score above buy threshold", score: 0.75, want: dto.SignalBuy},
		{name: "score exactly at buy threshold", score: 0.6, want: dto.SignalBuy},
		{name: "score between thresholds", score: 0.1, want: dto.SignalHold},
		{name: "score exactly at sell threshold", score: -0.6, want: dto.SignalSell},
		{name: "score below sell threshold", score: -0.9, want: dto.SignalSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapSignal(tt.score, buyThreshold, sellThreshold))
			// Applying the table twice gives the same answer: no hidden state.
			assert.Equal(t, tt.want, MapSignal(tt.score, buyThreshold, sellThreshold))
		})
	}
}
