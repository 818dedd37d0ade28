package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/httpclient"
	"stock-advisor/pkg/logger"
	"time"

	"golang.org/x/time/rate"
)

const priceFeedSourceID = "price_feed"

// PriceFeedRepository talks to the external price-feed collaborator. All
// collectors share its single rate limiter.
type PriceFeedRepository interface {
	Get(ctx context.Context, symbol string) (*dto.PriceObservation, error)
}

type priceFeedRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewPriceFeedRepository(cfg *config.Config, log *logger.Logger) PriceFeedRepository {
	secondsPerRequest := time.Minute / time.Duration(max(cfg.PriceFeed.MaxRequestPerMinute, 1))
	return &priceFeedRepository{
		httpClient:     httpclient.New(cfg.PriceFeed.BaseURL, cfg.PriceFeed.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *priceFeedRepository) Get(ctx context.Context, symbol string) (*dto.PriceObservation, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, dto.NewCollectError(priceFeedSourceID, dto.FailureRateLimited, err)
	}

	var feedResp dto.PriceFeedResponse
	resp, err := r.httpClient.Get(ctx, "/quotes/"+symbol, nil, nil, &feedResp)
	if err != nil {
		return nil, dto.NewCollectError(priceFeedSourceID, classifyTransportError(err), err)
	}
	if reason, ok := classifyStatusCode(resp.StatusCode); ok {
		return nil, dto.NewCollectError(priceFeedSourceID, reason,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if feedResp.Price <= 0 {
		return nil, dto.NewCollectError(priceFeedSourceID, dto.FailureParseError,
			fmt.Errorf("non-positive price %f for %s", feedResp.Price, symbol))
	}

	return &dto.PriceObservation{
		Symbol:    symbol,
		Price:     feedResp.Price,
		Volume:    feedResp.Volume,
		Timestamp: time.Unix(feedResp.Timestamp, 0).UTC(),
		History:   feedResp.History,
	}, nil
}

// classifyTransportError maps a client error onto the collect failure taxonomy.
func classifyTransportError(err error) dto.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return dto.FailureTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return dto.FailureTimeout
	}
	return dto.FailureNetworkError
}

func classifyStatusCode(code int) (dto.FailureReason, bool) {
	switch {
	case code == http.StatusTooManyRequests:
		return dto.FailureRateLimited, true
	case code >= 500:
		return dto.FailureNetworkError, true
	case code >= 400:
		return dto.FailureParseError, true
	}
	return "", false
}
