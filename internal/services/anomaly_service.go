package services

import (
	"context"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/anomaly"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
)

// DetectRequest asks for anomaly detection on a stored metric or an inline
// series. Series wins when both are given.
type DetectRequest struct {
	Metric      string
	Series      analytics.Series
	Sensitivity string   // low, medium, high; empty uses the configured default
	Methods     []string // detector pipeline; empty uses the configured default
}

// AnomalySummary counts detected anomalies
type AnomalySummary struct {
	Total    int                  `json:"total"`
	Critical int                  `json:"critical"`
	Warning  int                  `json:"warning"`
	ByType   map[anomaly.Type]int `json:"by_type"`
}

// AnomalyResult is the response of DetectAnomalies
type AnomalyResult struct {
	AnalysisID  string              `json:"analysis_id"`
	Metric      string              `json:"metric,omitempty"`
	Sensitivity anomaly.Sensitivity `json:"sensitivity"`
	Thresholds  anomaly.Thresholds  `json:"thresholds"`
	Methods     []string            `json:"methods"`
	Points      int                 `json:"points"`
	Anomalies   []anomaly.Record    `json:"anomalies"`
	Summary     AnomalySummary      `json:"summary"`
}

// DetectAnomalies runs the detector pipeline
func (s *AnalyticsService) DetectAnomalies(ctx context.Context, req DetectRequest) (*AnomalyResult, error) {
	startExec := time.Now()

	level := req.Sensitivity
	if level == "" {
		level = s.cfg.DefaultSensitivity
	}
	sensitivity, err := anomaly.ParseSensitivity(level)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}

	methods := req.Methods
	if len(methods) == 0 {
		methods = s.cfg.AnomalyMethods
	}
	if len(methods) == 0 {
		methods = anomaly.DefaultMethods
	}
	for _, m := range methods {
		if _, err := anomaly.GetDetector(m); err != nil {
			return nil, NewServiceErrorWithDetails(ErrCodeInvalidRequest, err.Error(),
				map[string]interface{}{"available_methods": anomaly.ListDetectors()})
		}
	}

	id, ctx := s.begin(ctx)

	series, err := s.resolveSeries(ctx, req.Metric, req.Series)
	if err != nil {
		return nil, err
	}

	records, err := anomaly.DetectWith(series, sensitivity, methods...)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	if records == nil {
		records = []anomaly.Record{}
	}

	result := &AnomalyResult{
		AnalysisID:  id,
		Metric:      req.Metric,
		Sensitivity: sensitivity,
		Thresholds:  sensitivity.Thresholds(),
		Methods:     methods,
		Points:      len(series),
		Anomalies:   records,
		Summary:     summarize(records),
	}

	s.publish(ctx, queue.KindAnomalies, id, req.Metric, result)

	logging.InfoCtx(ctx, "Anomaly detection completed",
		"metric", req.Metric,
		"sensitivity", string(sensitivity),
		"points", len(series),
		"anomalies", len(records),
		"critical", result.Summary.Critical,
		"latency_ms", time.Since(startExec).Milliseconds())

	return result, nil
}

func summarize(records []anomaly.Record) AnomalySummary {
	sum := AnomalySummary{Total: len(records), ByType: make(map[anomaly.Type]int)}
	for _, r := range records {
		if r.Severity == anomaly.SeverityCritical {
			sum.Critical++
		} else {
			sum.Warning++
		}
		sum.ByType[r.Type]++
	}
	return sum
}
