package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/correlation"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"github.com/soltixdb/insight/internal/utils"
	"golang.org/x/sync/errgroup"
)

// CorrelateRequest asks for the correlation matrix of stored metrics and/or
// inline series. An inline series shadows a stored metric of the same name.
type CorrelateRequest struct {
	Metrics        []string
	SeriesByMetric map[string]analytics.Series
	Threshold      *float64 // nil uses the configured threshold
}

// CorrelationResult is the response of Correlate
type CorrelationResult struct {
	AnalysisID string `json:"analysis_id"`
	correlation.Result
}

// Correlate correlates every pair of metrics. Gaps are dropped pairwise.
func (s *AnalyticsService) Correlate(ctx context.Context, req CorrelateRequest) (*CorrelationResult, error) {
	startExec := time.Now()

	threshold := s.cfg.CorrelationThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, invalidRequest("threshold must be within [0, 1]")
	}

	var toFetch []string
	seen := make(map[string]struct{})
	for name, series := range req.SeriesByMetric {
		if len(series) > s.cfg.MaxSeriesLength {
			return nil, s.tooLong(len(series))
		}
		seen[name] = struct{}{}
	}
	for _, m := range req.Metrics {
		if m == "" {
			return nil, invalidRequest("metric names must not be empty")
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		toFetch = append(toFetch, m)
	}

	if len(seen) < 2 {
		return nil, invalidRequest("At least two metrics are required")
	}
	if len(seen) > utils.MaxMetricsPerCorrelation {
		return nil, NewServiceErrorWithDetails(ErrCodeInvalidRequest,
			fmt.Sprintf("Too many metrics: %d", len(seen)),
			map[string]interface{}{"max_metrics": utils.MaxMetricsPerCorrelation})
	}

	id, ctx := s.begin(ctx)

	values := make(map[string][]float64, len(seen))
	for name, series := range req.SeriesByMetric {
		values[name] = series.Floats()
	}

	fetched, err := s.fetchMany(ctx, toFetch)
	if err != nil {
		return nil, err
	}
	for name, series := range fetched {
		values[name] = series.Floats()
	}

	result := &CorrelationResult{
		AnalysisID: id,
		Result:     correlation.ComputeMatrix(values, threshold),
	}

	s.publish(ctx, queue.KindCorrelations, id, strings.Join(result.Metrics, ","), result)

	logging.InfoCtx(ctx, "Correlation completed",
		"metrics", len(result.Metrics),
		"pairs", len(result.Pairs),
		"significant_pairs", len(result.SignificantPairs),
		"latency_ms", time.Since(startExec).Milliseconds())

	return result, nil
}

// fetchMany fetches metrics concurrently, bounded by the source concurrency
func (s *AnalyticsService) fetchMany(ctx context.Context, metrics []string) (map[string]analytics.Series, error) {
	out := make(map[string]analytics.Series, len(metrics))
	if len(metrics) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	sorted := append([]string(nil), metrics...)
	sort.Strings(sorted)
	for _, metric := range sorted {
		g.Go(func() error {
			series, err := s.fetchSeries(gctx, metric)
			if err != nil {
				return err
			}
			mu.Lock()
			out[metric] = series
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
