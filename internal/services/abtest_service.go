package services

import (
	"context"
	"time"

	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"golang.org/x/sync/errgroup"
)

// ABTestRequest asks for a two-sample test. Inline samples win; otherwise
// both arms of Experiment are resolved through the source.
type ABTestRequest struct {
	Experiment string
	VariantA   *abtest.Sample
	VariantB   *abtest.Sample
	MetricType string
}

// ABTestResult is the response of RunABTest
type ABTestResult struct {
	AnalysisID string        `json:"analysis_id"`
	Experiment string        `json:"experiment,omitempty"`
	VariantA   abtest.Sample `json:"variant_a"`
	VariantB   abtest.Sample `json:"variant_b"`
	*abtest.Result
}

// RunABTest validates both arms and runs the test for the metric type. A
// validation failure is returned as a VALIDATION_FAILED ServiceError whose
// details carry the issues.
func (s *AnalyticsService) RunABTest(ctx context.Context, req ABTestRequest) (*ABTestResult, error) {
	startExec := time.Now()

	metric, err := abtest.ParseMetricType(req.MetricType)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	if (req.VariantA == nil || req.VariantB == nil) && req.Experiment == "" {
		return nil, invalidRequest("Either experiment or both variant_a and variant_b are required")
	}

	id, ctx := s.begin(ctx)

	a, b, err := s.resolveSamples(ctx, req)
	if err != nil {
		return nil, err
	}

	cfg := abtest.Config{
		MinSampleSize:  s.cfg.MinSampleSize,
		MinConversions: s.cfg.MinConversions,
		Alpha:          s.cfg.Alpha,
		ConfidenceZ:    s.cfg.ConfidenceZ,
	}

	outcome := abtest.RunWithConfig(a, b, metric, cfg)
	if !outcome.Valid() {
		logging.InfoCtx(ctx, "A/B test rejected",
			"experiment", req.Experiment,
			"issues", len(outcome.Failure.Issues))
		return nil, NewServiceErrorWithDetails(ErrCodeValidationFailed, outcome.Failure.Error(),
			map[string]interface{}{"issues": outcome.Failure.Issues})
	}

	result := &ABTestResult{
		AnalysisID: id,
		Experiment: req.Experiment,
		VariantA:   a,
		VariantB:   b,
		Result:     outcome.Result,
	}

	s.publish(ctx, queue.KindABTests, id, req.Experiment, result)

	logging.InfoCtx(ctx, "A/B test completed",
		"experiment", req.Experiment,
		"metric_type", string(metric),
		"p_value", result.PValue,
		"significant", result.IsSignificant,
		"winner", result.Winner,
		"latency_ms", time.Since(startExec).Milliseconds())

	return result, nil
}

func (s *AnalyticsService) resolveSamples(ctx context.Context, req ABTestRequest) (abtest.Sample, abtest.Sample, error) {
	var a, b abtest.Sample
	if req.VariantA != nil {
		a = *req.VariantA
	}
	if req.VariantB != nil {
		b = *req.VariantB
	}
	if req.VariantA != nil && req.VariantB != nil {
		return a, b, nil
	}
	if s.source == nil {
		return a, b, NewServiceError(ErrCodeSourceFailed, "No series source configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(variant string, dst *abtest.Sample) {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, s.fetchTimeout)
			defer cancel()
			sample, err := s.source.FetchSample(fetchCtx, req.Experiment, variant)
			if err != nil {
				return err
			}
			*dst = sample
			return nil
		})
	}
	if req.VariantA == nil {
		fetch(abtest.VariantA, &a)
	}
	if req.VariantB == nil {
		fetch(abtest.VariantB, &b)
	}

	if err := g.Wait(); err != nil {
		logging.WarnCtx(ctx, "Sample fetch failed", "experiment", req.Experiment, "error", err)
		return a, b, sourceError(err)
	}
	return a, b, nil
}
