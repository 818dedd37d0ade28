package pipeline

import (
	"context"
	"errors"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
	"time"
)

// PriceCollector fetches one stock's market data. A failed collect is
// returned as a typed error; retrying happens in-call only, never across
// cycles.
type PriceCollector struct {
	cfg  *config.Config
	log  *logger.Logger
	repo repository.PriceFeedRepository
}

func NewPriceCollector(cfg *config.Config, log *logger.Logger, repo repository.PriceFeedRepository) *PriceCollector {
	return &PriceCollector{cfg: cfg, log: log, repo: repo}
}

func (c *PriceCollector) Collect(ctx context.Context, symbol string) (*dto.PriceObservation, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.PriceFeed.MaxRetries; attempt++ {
		observation, err := c.repo.Get(ctx, symbol)
		if err == nil {
			return observation, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}

		c.log.WarnContext(ctx, "Price collect attempt failed, retrying",
			logger.StringField("symbol", symbol),
			logger.IntField("attempt", attempt),
			logger.ErrorField(err),
		)

		select {
		case <-ctx.Done():
			return nil, dto.NewCollectError("price_feed", dto.FailureTimeout, ctx.Err())
		case <-time.After(c.cfg.PriceFeed.RetryBackoff):
		}
	}

	return nil, lastErr
}

// retryable reports whether an immediate retry can help. Rate limits and
// broken payloads will not resolve within the same call.
func retryable(err error) bool {
	var collectErr *dto.CollectError
	if !errors.As(err, &collectErr) {
		return false
	}
	return collectErr.Reason == dto.FailureNetworkError
}

// SentimentCollector fetches one stock's sentiment from one source. Failures
// are captured inside the returned observation so the aggregator can account
// for the missing source explicitly.
type SentimentCollector struct {
	log           *logger.Logger
	repo          repository.SentimentSourceRepository
	cycleInterval time.Duration
}

func NewSentimentCollector(log *logger.Logger, repo repository.SentimentSourceRepository, cycleInterval time.Duration) *SentimentCollector {
	return &SentimentCollector{log: log, repo: repo, cycleInterval: cycleInterval}
}

func (c *SentimentCollector) Source() string {
	return c.repo.SourceName()
}

func (c *SentimentCollector) Weight() float64 {
	return c.repo.Weight()
}

func (c *SentimentCollector) Collect(ctx context.Context, symbol string, now time.Time) dto.SourceObservation {
	observation := dto.SourceObservation{
		Symbol: symbol,
		Source: c.repo.SourceName(),
	}

	resp, err := c.repo.Get(ctx, symbol)
	if err != nil {
		var collectErr *dto.CollectError
		if !errors.As(err, &collectErr) {
			collectErr = dto.NewCollectError(c.repo.SourceName(), dto.FailureNetworkError, err)
		}
		observation.Status = dto.CollectionStatusFailed
		observation.Failure = collectErr
		observation.Timestamp = now
		return observation
	}

	observation.Score = resp.Score
	observation.Timestamp = time.Unix(resp.Timestamp, 0).UTC()
	observation.Status = dto.CollectionStatusOK
	if now.Sub(observation.Timestamp) > c.cycleInterval {
		observation.Status = dto.CollectionStatusStale
	}

	return observation
}
