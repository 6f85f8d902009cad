package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/models"
	"github.com/soltixdb/insight/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	analytics *services.AnalyticsService

	sourceType    string
	publisherType string
}

// New creates a new handler instance
func New(logger *logging.Logger, analytics *services.AnalyticsService, cfg *config.Config) *Handler {
	h := &Handler{
		logger:    logger,
		analytics: analytics,
	}
	if cfg != nil {
		h.sourceType = cfg.Source.Type
		if cfg.Publisher.Enabled {
			h.publisherType = cfg.Publisher.Type
		}
	}
	return h
}

// bindJSON parses the body into req and runs its validation. On failure the
// error response has already been written and ok is false.
func bindJSON(c *fiber.Ctx, req interface{ Validate() error }) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Path:    c.Path(),
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}

	if err := req.Validate(); err != nil {
		message := err.Error()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.ErrCodeInvalidRequest,
				Message: message,
				Path:    c.Path(),
			},
		})
	}

	return true, nil
}

// handleServiceError renders a ServiceError with the status its code maps
// to. Other errors go to the app error handler.
func (h *Handler) handleServiceError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		return err
	}

	return c.Status(statusFor(svcErr.Code)).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

func statusFor(code string) int {
	switch code {
	case services.ErrCodeInvalidRequest:
		return fiber.StatusBadRequest
	case services.ErrCodeSeriesNotFound:
		return fiber.StatusNotFound
	case services.ErrCodeValidationFailed:
		return fiber.StatusUnprocessableEntity
	case services.ErrCodeSourceFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
