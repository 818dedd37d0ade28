package dto

// PriceFeedResponse is the wire format of the external price-feed collaborator.
type PriceFeedResponse struct {
	Symbol    string       `json:"symbol"`
	Price     float64      `json:"price"`
	Volume    int64        `json:"volume"`
	Timestamp int64        `json:"timestamp"`
	History   []PricePoint `json:"history"`
}
