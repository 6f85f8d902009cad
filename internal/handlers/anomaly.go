package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/models"
	"github.com/soltixdb/insight/internal/services"
)

// Anomalies handles POST /v1/anomalies
func (h *Handler) Anomalies(c *fiber.Ctx) error {
	var req models.AnomalyRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	result, err := h.analytics.DetectAnomalies(c.UserContext(), services.DetectRequest{
		Metric:      req.Metric,
		Series:      req.Series,
		Sensitivity: req.Sensitivity,
		Methods:     req.Methods,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(result)
}
