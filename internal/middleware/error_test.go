package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/models"
)

func decodeError(t *testing.T, app *fiber.App, method, path string) (int, models.ErrorDetail) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body.Error
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		err      *fiber.Error
		wantCode string
	}{
		{fiber.ErrBadRequest, "BAD_REQUEST"},
		{fiber.ErrUnauthorized, "UNAUTHORIZED"},
		{fiber.ErrNotFound, "NOT_FOUND"},
		{fiber.ErrRequestEntityTooLarge, "REQUEST_ENTITY_TOO_LARGE"},
		{fiber.ErrServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{fiber.NewError(fiber.StatusTeapot, "short and stout"), "IM_A_TEAPOT"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
			app.Get("/fail", func(c *fiber.Ctx) error {
				return tt.err
			})

			status, detail := decodeError(t, app, "GET", "/fail")
			if status != tt.err.Code {
				t.Errorf("status = %d, want %d", status, tt.err.Code)
			}
			if detail.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", detail.Code, tt.wantCode)
			}
			if detail.Message != tt.err.Message {
				t.Errorf("message = %q, want %q", detail.Message, tt.err.Message)
			}
			if detail.Path != "/fail" {
				t.Errorf("path = %q", detail.Path)
			}
		})
	}
}

func TestErrorHandler_WrappedFiberError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fmt.Errorf("parse body: %w", fiber.ErrUnprocessableEntity)
	})

	status, detail := decodeError(t, app, "GET", "/fail")
	if status != fiber.StatusUnprocessableEntity || detail.Code != "UNPROCESSABLE_ENTITY" {
		t.Errorf("got %d %q", status, detail.Code)
	}
}

func TestErrorHandler_GenericErrorIsHidden(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return errors.New("dial tcp 10.0.0.5:5432: connection refused")
	})

	status, detail := decodeError(t, app, "GET", "/fail")
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if detail.Message != "Internal Server Error" {
		t.Errorf("message leaked: %q", detail.Message)
	}
	if detail.Code != "INTERNAL_SERVER_ERROR" {
		t.Errorf("code = %q", detail.Code)
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
	app.Get("/health", func(c *fiber.Ctx) error { return nil })

	status, detail := decodeError(t, app, "GET", "/missing")
	if status != fiber.StatusNotFound || detail.Code != "NOT_FOUND" {
		t.Errorf("got %d %q", status, detail.Code)
	}
}

func TestStatusCode(t *testing.T) {
	cases := map[int]string{
		400: "BAD_REQUEST",
		422: "UNPROCESSABLE_ENTITY",
		502: "BAD_GATEWAY",
		599: "ERROR",
	}
	for status, want := range cases {
		if got := StatusCode(status); got != want {
			t.Errorf("StatusCode(%d) = %q, want %q", status, got, want)
		}
	}
}
