package models

import "github.com/soltixdb/insight/internal/analytics/descriptive"

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Source    string `json:"source,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}

// DescribeResponse represents the summary of an inline sample
type DescribeResponse struct {
	AnalysisID string            `json:"analysis_id"`
	Stats      descriptive.Stats `json:"stats"`
	Dropped    int               `json:"dropped"` // entries that were not finite numbers
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
