package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/models"
	"github.com/soltixdb/insight/internal/utils"
)

// Describe handles POST /v1/stats/describe
func (h *Handler) Describe(c *fiber.Ctx) error {
	var req models.DescribeRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	values, _ := utils.ToFloat64Slice(req.Values)
	result, err := h.analytics.Describe(c.UserContext(), values)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(models.DescribeResponse{
		AnalysisID: result.AnalysisID,
		Stats:      result.Stats,
		Dropped:    len(req.Values) - len(values),
	})
}
