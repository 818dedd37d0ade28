package pipeline

import (
	"fmt"
	"sort"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"stock-advisor/pkg/utils"
	"strings"
)

// Synthesizer merges prediction, sentiment, and risk into the final
// recommendation with its explanation text.
type Synthesizer struct{}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize builds one immutable recommendation. All inputs must carry the
// same cycle id; mixing cycles corrupts traceability and is rejected.
func (s *Synthesizer) Synthesize(prediction *model.PredictionResult, sentiment *model.AggregatedSentiment, risk *model.RiskAssessment, holdingPeriods []string) (*model.Recommendation, error) {
	if prediction == nil || sentiment == nil || risk == nil {
		return nil, fmt.Errorf("synthesize requires prediction, sentiment and risk")
	}
	if prediction.CycleID != sentiment.CycleID || prediction.CycleID != risk.CycleID {
		return nil, fmt.Errorf("cycle id mismatch: prediction=%s sentiment=%s risk=%s",
			prediction.CycleID, sentiment.CycleID, risk.CycleID)
	}

	recommendation := &model.Recommendation{
		StockSymbol:          prediction.StockSymbol,
		CycleID:              prediction.CycleID,
		Signal:               prediction.Signal,
		Confidence:           prediction.Confidence,
		SentimentUnavailable: sentiment.Unavailable,
		RiskTier:             risk.Tier,
		HoldingPeriods:       mustJSON(holdingPeriods),
		Explanation:          buildExplanation(prediction, sentiment, risk),
	}
	if !sentiment.Unavailable && sentiment.ID != 0 {
		recommendation.SentimentID = utils.ToPointer(sentiment.ID)
	}

	return recommendation, nil
}

// buildExplanation renders the fixed slot template: signal + confidence,
// sentiment direction + freshness (or an explicit unavailability statement),
// risk tier + its dominant factor, and model attribution. Length is bounded
// by the template itself, not by truncation.
func buildExplanation(prediction *model.PredictionResult, sentiment *model.AggregatedSentiment, risk *model.RiskAssessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s is a %s with %s confidence (model %s).",
		prediction.StockSymbol,
		strings.ToLower(prediction.Signal),
		utils.FormatPercentage(prediction.Confidence),
		prediction.ModelVersion,
	)

	if sentiment.Unavailable {
		b.WriteString(" Sentiment data was unavailable from all sources this cycle.")
	} else {
		freshness := "fresh"
		if sentiment.Stale {
			freshness = "stale"
		}
		fmt.Fprintf(&b, " Market sentiment is %s at %.2f (%s data).",
			sentimentDirection(sentiment.Score), sentiment.Score, freshness)
	}

	fmt.Fprintf(&b, " Risk is %s, %s.", strings.ToLower(risk.Tier), riskFactor(risk))

	return b.String()
}

func sentimentDirection(score float64) string {
	switch {
	case score > 0.1:
		return "positive"
	case score < -0.1:
		return "negative"
	default:
		return "neutral"
	}
}

func riskFactor(risk *model.RiskAssessment) string {
	if risk.Escalated {
		return "escalated due to low prediction confidence"
	}
	return fmt.Sprintf("driven by realized volatility of %.4f", risk.Volatility)
}

// Rank orders a cycle's recommendations into a deterministic total order:
// confidence descending, risk tier ascending, symbol ascending. Rank numbers
// are assigned starting from 1.
func Rank(recommendations []model.Recommendation) []model.Recommendation {
	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Confidence != recommendations[j].Confidence {
			return recommendations[i].Confidence > recommendations[j].Confidence
		}
		ri, rj := dto.RiskTierRank(recommendations[i].RiskTier), dto.RiskTierRank(recommendations[j].RiskTier)
		if ri != rj {
			return ri < rj
		}
		return recommendations[i].StockSymbol < recommendations[j].StockSymbol
	})

	for i := range recommendations {
		recommendations[i].Rank = i + 1
	}
	return recommendations
}
