package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/models"
	"github.com/soltixdb/insight/internal/services"
)

// Correlations handles POST /v1/correlations
func (h *Handler) Correlations(c *fiber.Ctx) error {
	var req models.CorrelationRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	result, err := h.analytics.Correlate(c.UserContext(), services.CorrelateRequest{
		Metrics:        req.Metrics,
		SeriesByMetric: req.Series,
		Threshold:      req.Threshold,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(result)
}
