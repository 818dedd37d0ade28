package dto

// InferenceRequest carries the already-computed feature vector to the trained
// model's inference endpoint. Feature engineering happens upstream.
type InferenceRequest struct {
	Symbol   string             `json:"symbol"`
	Features map[string]float64 `json:"features"`
}

// InferenceResponse is the model endpoint's raw output.
type InferenceResponse struct {
	Symbol       string  `json:"symbol"`
	Score        float64 `json:"score"`
	ValidationR2 float64 `json:"validation_r2"`
	ModelVersion string  `json:"model_version"`
	// HoldingPeriods lists the horizons the model computed this signal for.
	// Empty means all supported horizons.
	HoldingPeriods []string `json:"holding_periods,omitempty"`
}
