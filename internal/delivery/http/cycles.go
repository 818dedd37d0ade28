package http

import (
	"errors"
	"net/http"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupCycles(base *echo.Group) {
	v1 := base.Group("/v1/cycles")
	{
		v1.GET("", h.ListCycles)
		v1.GET("/:id", h.GetCycle)
		v1.POST("/run", h.RunCycle)
	}
}

func (h *HttpAPIHandler) ListCycles(c echo.Context) error {
	reports, err := h.service.ReportService.List(c.Request().Context(), 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", reports))
}

func (h *HttpAPIHandler) GetCycle(c echo.Context) error {
	report, err := h.service.ReportService.GetByCycleID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	if report == nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "cycle not found", nil))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", report))
}

// RunCycle triggers one cycle outside the hourly cadence. An overlapping
// trigger is rejected, mirroring the scheduler's skip policy.
func (h *HttpAPIHandler) RunCycle(c echo.Context) error {
	report, err := h.service.SchedulerService.TriggerNow(c.Request().Context())
	if err != nil {
		if errors.Is(err, service.ErrCycleOverlap) {
			return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, err.Error(), nil))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Cycle finished", report))
}
