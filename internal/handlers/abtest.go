package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/models"
	"github.com/soltixdb/insight/internal/services"
)

// ABTests handles POST /v1/abtests. Samples that fail validation yield 422
// with the issues in the error details.
func (h *Handler) ABTests(c *fiber.Ctx) error {
	var req models.ABTestRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	result, err := h.analytics.RunABTest(c.UserContext(), services.ABTestRequest{
		Experiment: req.Experiment,
		VariantA:   req.VariantA,
		VariantB:   req.VariantB,
		MetricType: req.MetricType,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(result)
}
