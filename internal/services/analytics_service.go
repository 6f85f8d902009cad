package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/descriptive"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"github.com/soltixdb/insight/internal/source"
	"github.com/soltixdb/insight/internal/utils"
)

// AnalyticsService runs the five analyses against inline data or data
// resolved through the series source
type AnalyticsService struct {
	logger       *logging.Logger
	source       source.SeriesSource
	publisher    *queue.EventPublisher
	cfg          config.AnalyticsConfig
	fetchTimeout time.Duration
	concurrency  int
	now          func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. publisher may be nil.
func NewAnalyticsService(
	logger *logging.Logger,
	src source.SeriesSource,
	publisher *queue.EventPublisher,
	analyticsCfg config.AnalyticsConfig,
	sourceCfg config.SourceConfig,
) *AnalyticsService {
	fetchTimeout := sourceCfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = utils.DefaultFetchTimeout
	}
	concurrency := sourceCfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if analyticsCfg.MaxSeriesLength <= 0 {
		analyticsCfg.MaxSeriesLength = utils.DefaultMaxSeriesLength
	}
	if analyticsCfg.ConfidenceZ <= 0 {
		analyticsCfg.ConfidenceZ = abtest.ConfidenceZ
	}

	return &AnalyticsService{
		logger:       logger,
		source:       src,
		publisher:    publisher,
		cfg:          analyticsCfg,
		fetchTimeout: fetchTimeout,
		concurrency:  concurrency,
		now:          time.Now,
	}
}

// DescribeResult is the summary of an inline sample
type DescribeResult struct {
	AnalysisID string            `json:"analysis_id"`
	Stats      descriptive.Stats `json:"stats"`
}

// Describe summarizes values. Non-finite entries are ignored.
func (s *AnalyticsService) Describe(ctx context.Context, values []float64) (*DescribeResult, error) {
	if len(values) > s.cfg.MaxSeriesLength {
		return nil, s.tooLong(len(values))
	}

	id, ctx := s.begin(ctx)
	stats := descriptive.Compute(values)

	logging.DebugCtx(ctx, "Describe completed",
		"values", len(values),
		"count", stats.Count)

	return &DescribeResult{AnalysisID: id, Stats: stats}, nil
}

// begin assigns an analysis ID and tags ctx with it
func (s *AnalyticsService) begin(ctx context.Context) (string, context.Context) {
	id := uuid.NewString()
	ctx = logging.WithAnalysisID(ctx, id)
	if logging.FromContext(ctx) == logging.Global() && s.logger != nil {
		ctx = logging.WithLogger(ctx, s.logger)
	}
	return id, ctx
}

func (s *AnalyticsService) tooLong(n int) *ServiceError {
	return NewServiceErrorWithDetails(ErrCodeInvalidRequest,
		fmt.Sprintf("Series too long: %d points", n),
		map[string]interface{}{"max_series_length": s.cfg.MaxSeriesLength})
}

// resolveSeries returns the inline series when given, otherwise fetches metric
func (s *AnalyticsService) resolveSeries(ctx context.Context, metric string, inline analytics.Series) (analytics.Series, error) {
	if inline != nil {
		if len(inline) > s.cfg.MaxSeriesLength {
			return nil, s.tooLong(len(inline))
		}
		return inline, nil
	}
	if metric == "" {
		return nil, invalidRequest("Either metric or series is required")
	}
	return s.fetchSeries(ctx, metric)
}

func (s *AnalyticsService) fetchSeries(ctx context.Context, metric string) (analytics.Series, error) {
	if s.source == nil {
		return nil, NewServiceError(ErrCodeSourceFailed, "No series source configured")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	series, err := s.source.FetchSeries(fetchCtx, metric)
	if err != nil {
		logging.WarnCtx(ctx, "Series fetch failed", "metric", metric, "error", err)
		return nil, sourceError(err)
	}

	logging.DebugCtx(ctx, "Series fetched",
		"metric", metric,
		"points", len(series),
		"latency_ms", time.Since(start).Milliseconds())
	return series, nil
}

// publish emits a result event; failures never fail the analysis
func (s *AnalyticsService) publish(ctx context.Context, kind queue.Kind, id, key string, result interface{}) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, utils.PublishTimeout)
	defer cancel()
	_ = s.publisher.Publish(pubCtx, kind, id, key, result)
}
