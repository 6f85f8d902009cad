package services

import (
	"context"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"golang.org/x/sync/errgroup"
)

// TrendRequest asks for trend analysis. Periods are caller-supplied
// comparisons; each entry of Comparisons (WoW, MoM, YoY) is resolved through
// the source as of AsOf and appended after them.
type TrendRequest struct {
	Metric      string
	Series      analytics.Series
	Periods     []trend.PeriodInput
	Comparisons []string
	AsOf        time.Time // zero means now
	Horizon     int       // forecast steps; zero uses the configured default
}

// TrendResult is the response of AnalyzeTrend
type TrendResult struct {
	AnalysisID string `json:"analysis_id"`
	Metric     string `json:"metric,omitempty"`
	AsOf       string `json:"as_of,omitempty"`
	trend.Analysis
}

// AnalyzeTrend compares periods, fits the trajectory and extrapolates
func (s *AnalyticsService) AnalyzeTrend(ctx context.Context, req TrendRequest) (*TrendResult, error) {
	startExec := time.Now()

	comparisons := make([]trend.PeriodType, 0, len(req.Comparisons))
	for _, c := range req.Comparisons {
		pt, err := trend.ParsePeriodType(c)
		if err != nil {
			return nil, invalidRequest(err.Error())
		}
		comparisons = append(comparisons, pt)
	}
	periods := make([]trend.PeriodInput, 0, len(req.Periods)+len(comparisons))
	for _, p := range req.Periods {
		pt, err := trend.ParsePeriodType(string(p.Type))
		if err != nil {
			return nil, invalidRequest(err.Error())
		}
		p.Type = pt
		periods = append(periods, p)
	}
	if len(comparisons) > 0 && req.Metric == "" {
		return nil, invalidRequest("metric is required for source comparisons")
	}
	if req.Horizon < 0 {
		return nil, invalidRequest("horizon must not be negative")
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = s.cfg.ForecastHorizon
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.now().UTC()
	}

	id, ctx := s.begin(ctx)

	series, err := s.resolveSeries(ctx, req.Metric, req.Series)
	if err != nil {
		return nil, err
	}

	fetched, err := s.fetchPeriods(ctx, req.Metric, comparisons, asOf)
	if err != nil {
		return nil, err
	}

	periods = append(periods, fetched...)

	result := &TrendResult{
		AnalysisID: id,
		Metric:     req.Metric,
		Analysis:   trend.AnalyzeWithHorizon(series, periods, horizon),
	}
	if len(comparisons) > 0 {
		result.AsOf = asOf.Format(time.RFC3339)
	}

	s.publish(ctx, queue.KindTrends, id, req.Metric, result)

	logging.InfoCtx(ctx, "Trend analysis completed",
		"metric", req.Metric,
		"points", len(series),
		"periods", len(periods),
		"trajectory", string(result.Trajectory.Trajectory),
		"latency_ms", time.Since(startExec).Milliseconds())

	return result, nil
}

// fetchPeriods resolves period aggregates concurrently, keeping request order
func (s *AnalyticsService) fetchPeriods(ctx context.Context, metric string, types []trend.PeriodType, asOf time.Time) ([]trend.PeriodInput, error) {
	if len(types) == 0 {
		return nil, nil
	}
	if s.source == nil {
		return nil, NewServiceError(ErrCodeSourceFailed, "No series source configured")
	}

	out := make([]trend.PeriodInput, len(types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, pt := range types {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, s.fetchTimeout)
			defer cancel()

			cur, prev, err := s.source.FetchPeriodAggregates(fetchCtx, metric, pt, asOf)
			if err != nil {
				return err
			}
			out[i] = trend.PeriodInput{Type: pt, CurrentValue: cur, PreviousValue: prev}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.WarnCtx(ctx, "Period aggregate fetch failed", "metric", metric, "error", err)
		return nil, sourceError(err)
	}
	return out, nil
}
