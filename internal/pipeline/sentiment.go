package pipeline

import (
	"encoding/json"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"time"

	"gorm.io/datatypes"
)

// SentimentAggregator combines per-source observations into one score with
// full provenance. Partial input is valid: weights are renormalized over the
// sources that actually delivered this cycle. Zero successful sources yields
// the unavailable marker, which downstream must not read as neutral.
type SentimentAggregator struct {
	cycleInterval time.Duration
}

func NewSentimentAggregator(cycleInterval time.Duration) *SentimentAggregator {
	return &SentimentAggregator{cycleInterval: cycleInterval}
}

func (a *SentimentAggregator) Aggregate(symbol, cycleID string, observations []dto.SourceObservation, weights map[string]float64, now time.Time) *model.AggregatedSentiment {
	aggregated := &model.AggregatedSentiment{
		StockSymbol: symbol,
		CycleID:     cycleID,
	}

	var contributing []dto.SourceObservation
	totalWeight := 0.0
	for _, observation := range observations {
		if !observation.Succeeded() {
			continue
		}
		weight := weights[observation.Source]
		if weight <= 0 {
			continue
		}
		contributing = append(contributing, observation)
		totalWeight += weight
	}

	if len(contributing) == 0 || totalWeight == 0 {
		aggregated.Unavailable = true
		return aggregated
	}

	effectiveWeights := make(map[string]float64, len(contributing))
	sourceTimestamps := make(map[string]time.Time, len(contributing))
	score := 0.0
	newest := contributing[0].Timestamp

	for _, observation := range contributing {
		normalized := weights[observation.Source] / totalWeight
		score += normalized * observation.Score
		effectiveWeights[observation.Source] = normalized
		sourceTimestamps[observation.Source] = observation.Timestamp
		if observation.Timestamp.After(newest) {
			newest = observation.Timestamp
		}
	}

	aggregated.Score = score
	aggregated.Stale = now.Sub(newest) > 2*a.cycleInterval
	aggregated.SourceWeights = mustJSON(effectiveWeights)
	aggregated.SourceTimestamps = mustJSON(sourceTimestamps)

	return aggregated
}

func mustJSON(value interface{}) datatypes.JSON {
	raw, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
