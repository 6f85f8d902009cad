// Package services provides the business logic layer between the HTTP
// handlers and the analytics core. Services resolve inputs through the
// series source, run the core, publish result events and log.
package services

import (
	"context"
	"errors"

	"github.com/soltixdb/insight/internal/source"
)

// Error codes carried by ServiceError
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeSeriesNotFound   = "SERIES_NOT_FOUND"
	ErrCodeSourceFailed     = "SOURCE_FAILED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func invalidRequest(message string) *ServiceError {
	return NewServiceError(ErrCodeInvalidRequest, message)
}

// sourceError maps a source failure to a ServiceError
func sourceError(err error) *ServiceError {
	switch {
	case errors.Is(err, source.ErrSeriesNotFound), errors.Is(err, source.ErrVariantNotFound):
		return NewServiceError(ErrCodeSeriesNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return NewServiceErrorWithDetails(ErrCodeSourceFailed, "Source fetch timed out",
			map[string]interface{}{"error": err.Error()})
	default:
		return NewServiceErrorWithDetails(ErrCodeSourceFailed, "Failed to fetch data from source",
			map[string]interface{}{"error": err.Error()})
	}
}
