package dto

// SentimentSourceResponse is the wire format shared by sentiment-source
// collaborators: one bounded score per stock with its publication time.
type SentimentSourceResponse struct {
	Symbol    string  `json:"symbol"`
	Score     float64 `json:"score"`
	Timestamp int64   `json:"timestamp"`
}
