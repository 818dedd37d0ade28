package dto

// Trading signal produced by the prediction adapter.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// Risk tiers, ordered from least to most risky.
const (
	RiskTierLow    = "LOW"
	RiskTierMedium = "MEDIUM"
	RiskTierHigh   = "HIGH"
)

// RiskTierRank maps a tier to its ordinal, used for rank tie-breaking.
func RiskTierRank(tier string) int {
	switch tier {
	case RiskTierLow:
		return 0
	case RiskTierMedium:
		return 1
	case RiskTierHigh:
		return 2
	default:
		return 3
	}
}

// Holding periods a recommendation applies to.
const (
	HoldingPeriodDaily   = "DAILY"
	HoldingPeriodWeekly  = "WEEKLY"
	HoldingPeriodMonthly = "MONTHLY"
)

func ValidHoldingPeriod(period string) bool {
	switch period {
	case HoldingPeriodDaily, HoldingPeriodWeekly, HoldingPeriodMonthly:
		return true
	}
	return false
}

// Per-source collection status recorded on each observation attempt.
const (
	CollectionStatusOK     = "OK"
	CollectionStatusStale  = "STALE"
	CollectionStatusFailed = "FAILED"
)
