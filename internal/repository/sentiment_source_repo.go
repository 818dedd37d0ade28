package repository

import (
	"context"
	"fmt"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/httpclient"
	"stock-advisor/pkg/logger"

	"golang.org/x/time/rate"
)

// SentimentSourceRepository talks to one sentiment-source collaborator. The
// rate limiter is shared across every concurrent stock worker hitting the
// same source; it is injected, not owned, so a slow source throttles only
// its own collectors.
type SentimentSourceRepository interface {
	SourceName() string
	Weight() float64
	Get(ctx context.Context, symbol string) (*dto.SentimentSourceResponse, error)
}

type sentimentSourceRepository struct {
	source         config.SentimentSource
	httpClient     httpclient.HTTPClient
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewSentimentSourceRepository(source config.SentimentSource, limiter *rate.Limiter, log *logger.Logger) SentimentSourceRepository {
	return &sentimentSourceRepository{
		source:         source,
		httpClient:     httpclient.New(source.BaseURL, source.Timeout, ""),
		logger:         log,
		requestLimiter: limiter,
	}
}

func (r *sentimentSourceRepository) SourceName() string {
	return r.source.Name
}

func (r *sentimentSourceRepository) Weight() float64 {
	return r.source.Weight
}

func (r *sentimentSourceRepository) Get(ctx context.Context, symbol string) (*dto.SentimentSourceResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, dto.NewCollectError(r.source.Name, dto.FailureRateLimited, err)
	}

	var sourceResp dto.SentimentSourceResponse
	resp, err := r.httpClient.Get(ctx, "/sentiment/"+symbol, nil, nil, &sourceResp)
	if err != nil {
		return nil, dto.NewCollectError(r.source.Name, classifyTransportError(err), err)
	}
	if reason, ok := classifyStatusCode(resp.StatusCode); ok {
		return nil, dto.NewCollectError(r.source.Name, reason,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	// Scores are contractually bounded; anything outside is a broken payload.
	if sourceResp.Score < -1 || sourceResp.Score > 1 {
		return nil, dto.NewCollectError(r.source.Name, dto.FailureParseError,
			fmt.Errorf("score %f out of range for %s", sourceResp.Score, symbol))
	}
	if sourceResp.Timestamp <= 0 {
		return nil, dto.NewCollectError(r.source.Name, dto.FailureParseError,
			fmt.Errorf("missing timestamp for %s", symbol))
	}
	return &sourceResp, nil
}
