package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/models"
	"github.com/soltixdb/insight/internal/services"
)

// Trends handles POST /v1/trends
func (h *Handler) Trends(c *fiber.Ctx) error {
	var req models.TrendRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	result, err := h.analytics.AnalyzeTrend(c.UserContext(), services.TrendRequest{
		Metric:      req.Metric,
		Series:      req.Series,
		Periods:     req.Periods,
		Comparisons: req.Comparisons,
		AsOf:        req.AsOfParsed,
		Horizon:     req.Horizon,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(result)
}
