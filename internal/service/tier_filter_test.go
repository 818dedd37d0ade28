package service

import (
	"encoding/json"
	"stock-advisor/internal/model"
	"stock-advisor/pkg/common"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func rankedRecommendations(symbols ...string) []model.Recommendation {
	recommendations := make([]model.Recommendation, 0, len(symbols))
	for i, symbol := range symbols {
		recommendations = append(recommendations, model.Recommendation{
			StockSymbol: symbol,
			Rank:        i + 1,
		})
	}
	return recommendations
}

func trackingState(tier string, maxTracked int, symbols ...string) *model.UserTracking {
	raw, _ := json.Marshal(symbols)
	return &model.UserTracking{
		UserID:         "user-1",
		Tier:           tier,
		MaxTracked:     maxTracked,
		TrackedSymbols: datatypes.JSON(raw),
	}
}

func TestFilterByTier(t *testing.T) {
	universe := rankedRecommendations("A", "B", "C", "D")

	tests := []struct {
		name     string
		tracking *model.UserTracking
		want     []string
	}{
		{
			name:     "free tier reduces to tracked intersection in original order",
			tracking: trackingState(common.TierFree, 5, "A", "B"),
			want:     []string{"A", "B"},
		},
		{
			name:     "free tier preserves ranking order regardless of tracked order",
			tracking: trackingState(common.TierFree, 5, "D", "A"),
			want:     []string{"A", "D"},
		},
		{
			name:     "free tier with nothing tracked sees nothing",
			tracking: trackingState(common.TierFree, 5),
			want:     []string{},
		},
		{
			name:     "free tier tracked set is bounded by the cap",
			tracking: trackingState(common.TierFree, 5, "A", "B", "C", "D", "E", "F", "G"),
			want:     []string{"A", "B", "C", "D"},
		},
		{
			name:     "premium passes through unchanged",
			tracking: trackingState(common.TierPremium, 0, "A"),
			want:     []string{"A", "B", "C", "D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByTier(universe, tt.tracking, 5)

			symbols := make([]string, 0, len(got))
			for _, recommendation := range got {
				symbols = append(symbols, recommendation.StockSymbol)
			}
			assert.Equal(t, tt.want, symbols)
		})
	}
}

func TestFilterByTier_TighterUserCapWins(t *testing.T) {
	universe := rankedRecommendations("A", "B", "C")
	tracking := trackingState(common.TierFree, 2, "A", "B", "C")

	got := FilterByTier(universe, tracking, 5)
	assert.Len(t, got, 2)
}

func TestFilterByTier_NeverMutatesInput(t *testing.T) {
	universe := rankedRecommendations("A", "B", "C", "D")
	FilterByTier(universe, trackingState(common.TierFree, 5, "C"), 5)

	assert.Len(t, universe, 4)
	assert.Equal(t, "A", universe[0].StockSymbol)
}
