package dto

import (
	"fmt"
	"time"
)

// FailureReason classifies why a single collect call failed.
type FailureReason string

const (
	FailureRateLimited  FailureReason = "rate_limited"
	FailureNetworkError FailureReason = "network_error"
	FailureParseError   FailureReason = "parse_error"
	FailureTimeout      FailureReason = "timeout"
)

// CollectError is the typed failure a collector returns instead of panicking.
// The orchestrator logs it and moves on.
type CollectError struct {
	Source string
	Reason FailureReason
	Err    error
}

func (e *CollectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("collect from %s failed (%s): %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("collect from %s failed (%s)", e.Source, e.Reason)
}

func (e *CollectError) Unwrap() error {
	return e.Err
}

func NewCollectError(source string, reason FailureReason, err error) *CollectError {
	return &CollectError{Source: source, Reason: reason, Err: err}
}

// PriceObservation is the result of one price-feed collect call.
type PriceObservation struct {
	Symbol    string
	Price     float64
	Volume    int64
	Timestamp time.Time
	// History holds trailing closes, newest last, for volatility calculation.
	History []PricePoint
}

type PricePoint struct {
	Close     float64   `json:"close"`
	Timestamp time.Time `json:"timestamp"`
}

// SourceObservation is the per-source outcome of one sentiment collect call.
// A failed call still yields an observation so aggregation can account for
// the missing source explicitly.
type SourceObservation struct {
	Symbol    string
	Source    string
	Score     float64
	Timestamp time.Time
	Status    string
	Failure   *CollectError
}

func (o SourceObservation) Succeeded() bool {
	return o.Status != CollectionStatusFailed
}
