package dto

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

type GetRecommendationsRequest struct {
	UserID        string `query:"user_id" validate:"required"`
	CycleID       string `query:"cycle_id"`
	HoldingPeriod string `query:"holding_period" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY"`
}
