package http

import (
	"errors"
	"net/http"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupRecommendations(base *echo.Group) {
	v1 := base.Group("/v1/recommendations")
	{
		v1.GET("", h.GetRecommendations)
	}
}

// GetRecommendations serves the ranked, tier-filtered recommendation list
// for one user. Filtering happens here at read time; the persisted records
// are never narrowed per user.
func (h *HttpAPIHandler) GetRecommendations(c echo.Context) error {
	var req dto.GetRecommendationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}

	recommendations, err := h.service.TierFilterService.GetRecommendationsForUser(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, err.Error(), nil))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", recommendations))
}
