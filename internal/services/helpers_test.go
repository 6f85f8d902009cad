package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"github.com/soltixdb/insight/internal/source"
)

// NewTestAnalyticsService creates a service over an in-memory source and an
// in-memory result queue
func NewTestAnalyticsService(t *testing.T) (*AnalyticsService, *source.MemorySource, *queue.MemoryQueue) {
	t.Helper()

	cfg := config.DefaultConfig()
	src := source.NewMemorySource()
	q := queue.NewMemory()
	logger := logging.NewNop()
	pub := queue.NewEventPublisher(q, "insight.results", logger)

	svc := NewAnalyticsService(logger, src, pub, cfg.Analytics, cfg.Source)
	svc.now = func() time.Time { return time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC) }
	return svc, src, q
}

// requireServiceError asserts err is a *ServiceError with code
func requireServiceError(t *testing.T, err error, code string) *ServiceError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, svcErr.Code, svcErr.Message)
	}
	return svcErr
}

// dailySeries builds one point per day ending at end, oldest first
func dailySeries(end time.Time, values ...float64) analytics.Series {
	s := make(analytics.Series, len(values))
	start := end.AddDate(0, 0, -(len(values) - 1))
	for i, v := range values {
		s[i] = analytics.TimeSeriesPoint{
			Timestamp: source.FormatTimestamp(start.AddDate(0, 0, i)),
			Value:     analytics.Float(v),
		}
	}
	return s
}

// failingSource returns err from every fetch
type failingSource struct {
	*source.MemorySource
	err error
}

func (f failingSource) FetchSeries(ctx context.Context, metric string) (analytics.Series, error) {
	return nil, f.err
}
