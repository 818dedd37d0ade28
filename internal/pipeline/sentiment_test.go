package pipeline

import (
	"encoding/json"
	"stock-advisor/internal/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentimentAggregator_Aggregate(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	weights := map[string]float64{"news": 0.5, "social": 0.3, "analyst": 0.2}

	tests := []struct {
		name            string
		observations    []dto.SourceObservation
		wantUnavailable bool
		wantScore       float64
		wantStale       bool
	}{
		{
			name: "all sources succeed",
			observations: []dto.SourceObservation{
				{Source: "news", Score: 0.8, Status: dto.CollectionStatusOK, Timestamp: now.Add(-10 * time.Minute)},
				{Source: "social", Score: -0.2, Status: dto.CollectionStatusOK, Timestamp: now.Add(-20 * time.Minute)},
				{Source: "analyst", Score: 0.5, Status: dto.CollectionStatusOK, Timestamp: now.Add(-30 * time.Minute)},
			},
			wantScore: 0.5*0.8 + 0.3*-0.2 + 0.2*0.5,
		},
		{
			name: "missing source renormalizes instead of zeroing",
			observations: []dto.SourceObservation{
				{Source: "news", Score: 0.6, Status: dto.CollectionStatusOK, Timestamp: now.Add(-5 * time.Minute)},
				{Source: "social", Score: 0.0, Status: dto.CollectionStatusFailed, Timestamp: now},
				{Source: "analyst", Score: 0.1, Status: dto.CollectionStatusOK, Timestamp: now.Add(-5 * time.Minute)},
			},
			// weights renormalized over news and analyst only
			wantScore: (0.5*0.6 + 0.2*0.1) / 0.7,
		},
		{
			name: "zero successful sources yields unavailable marker",
			observations: []dto.SourceObservation{
				{Source: "news", Status: dto.CollectionStatusFailed, Timestamp: now},
				{Source: "social", Status: dto.CollectionStatusFailed, Timestamp: now},
				{Source: "analyst", Status: dto.CollectionStatusFailed, Timestamp: now},
			},
			wantUnavailable: true,
		},
		{
			name:            "no observations at all yields unavailable marker",
			observations:    nil,
			wantUnavailable: true,
		},
		{
			name: "newest contribution older than two cycles is stale",
			observations: []dto.SourceObservation{
				{Source: "news", Score: 0.4, Status: dto.CollectionStatusStale, Timestamp: now.Add(-3 * time.Hour)},
				{Source: "analyst", Score: 0.2, Status: dto.CollectionStatusStale, Timestamp: now.Add(-4 * time.Hour)},
			},
			wantScore: (0.5*0.4 + 0.2*0.2) / 0.7,
			wantStale: true,
		},
	}

	aggregator := NewSentimentAggregator(time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aggregator.Aggregate("ACME", "cycle-1", tt.observations, weights, now)

			require.NotNil(t, got)
			assert.Equal(t, "ACME", got.StockSymbol)
			assert.Equal(t, "cycle-1", got.CycleID)
			assert.Equal(t, tt.wantUnavailable, got.Unavailable)

			if tt.wantUnavailable {
				// The marker must stay a marker, never a numeric zero score.
				assert.Zero(t, got.Score)
				assert.Empty(t, got.SourceWeights)
				return
			}

			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantStale, got.Stale)
		})
	}
}

func TestSentimentAggregator_Provenance(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	weights := map[string]float64{"news": 0.6, "social": 0.4}

	observations := []dto.SourceObservation{
		{Source: "news", Score: 0.5, Status: dto.CollectionStatusOK, Timestamp: now.Add(-10 * time.Minute)},
		{Source: "social", Status: dto.CollectionStatusFailed, Timestamp: now},
	}

	got := NewSentimentAggregator(time.Hour).Aggregate("ACME", "cycle-1", observations, weights, now)

	var effectiveWeights map[string]float64
	require.NoError(t, json.Unmarshal(got.SourceWeights, &effectiveWeights))
	assert.Len(t, effectiveWeights, 1)
	assert.InDelta(t, 1.0, effectiveWeights["news"], 1e-9)

	var timestamps map[string]time.Time
	require.NoError(t, json.Unmarshal(got.SourceTimestamps, &timestamps))
	require.Contains(t, timestamps, "news")
	assert.True(t, timestamps["news"].Equal(now.Add(-10*time.Minute)))
	assert.NotContains(t, timestamps, "social")
}
