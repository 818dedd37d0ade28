package repository

import (
	"context"
	"fmt"
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/httpclient"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/ratelimit"
)

const inferenceSourceID = "model_inference"

// InferenceRepository calls the externally-trained model's inference endpoint.
type InferenceRepository interface {
	Predict(ctx context.Context, req dto.InferenceRequest) (*dto.InferenceResponse, error)
}

type inferenceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *ratelimit.TokenLimiter
}

func NewInferenceRepository(cfg *config.Config, log *logger.Logger) InferenceRepository {
	return &inferenceRepository{
		httpClient:     httpclient.New(cfg.Inference.BaseURL, cfg.Inference.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: ratelimit.NewTokenLimiter(max(cfg.Inference.MaxRequestPerMinute, 1)),
	}
}

func (r *inferenceRepository) Predict(ctx context.Context, req dto.InferenceRequest) (*dto.InferenceResponse, error) {
	if err := r.requestLimiter.Wait(ctx, 1); err != nil {
		return nil, dto.NewCollectError(inferenceSourceID, dto.FailureRateLimited, err)
	}

	var inferenceResp dto.InferenceResponse
	resp, err := r.httpClient.Post(ctx, "/predict", req, nil, &inferenceResp)
	if err != nil {
		return nil, dto.NewCollectError(inferenceSourceID, classifyTransportError(err), err)
	}
	if reason, ok := classifyStatusCode(resp.StatusCode); ok {
		return nil, dto.NewCollectError(inferenceSourceID, reason,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if inferenceResp.ModelVersion == "" {
		inferenceResp.ModelVersion = r.cfg.Inference.ModelVersion
	}

	return &inferenceResp, nil
}
