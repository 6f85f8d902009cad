package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
)

// MemorySource keeps series and samples in process
type MemorySource struct {
	mu      sync.RWMutex
	series  map[string]analytics.Series
	samples map[string]abtest.Sample
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		series:  make(map[string]analytics.Series),
		samples: make(map[string]abtest.Sample),
	}
}

func sampleKey(experiment, variant string) string {
	return experiment + "/" + variant
}

// PutSeries stores a copy of series under metric, replacing any previous one
func (m *MemorySource) PutSeries(metric string, series analytics.Series) {
	cp := make(analytics.Series, len(series))
	copy(cp, series)

	m.mu.Lock()
	m.series[metric] = cp
	m.mu.Unlock()
}

// PutSample stores the summary of one experiment variant
func (m *MemorySource) PutSample(experiment, variant string, sample abtest.Sample) {
	m.mu.Lock()
	m.samples[sampleKey(experiment, variant)] = sample
	m.mu.Unlock()
}

// Metrics returns the stored metric names
func (m *MemorySource) Metrics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.series))
	for name := range m.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchSeries returns a copy of the stored series
func (m *MemorySource) FetchSeries(ctx context.Context, metric string) (analytics.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	s, ok := m.series[metric]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("metric %s: %w", metric, ErrSeriesNotFound)
	}

	cp := make(analytics.Series, len(s))
	copy(cp, s)
	return cp, nil
}

// FetchPeriodAggregates sums the stored series over the two windows
func (m *MemorySource) FetchPeriodAggregates(ctx context.Context, metric string, period trend.PeriodType, asOf time.Time) (float64, float64, error) {
	s, err := m.FetchSeries(ctx, metric)
	if err != nil {
		return 0, 0, err
	}
	cur, prev := WindowSums(s, period.Days(), asOf)
	return cur, prev, nil
}

// FetchSample returns the stored variant summary
func (m *MemorySource) FetchSample(ctx context.Context, experiment, variant string) (abtest.Sample, error) {
	if err := ctx.Err(); err != nil {
		return abtest.Sample{}, err
	}

	m.mu.RLock()
	s, ok := m.samples[sampleKey(experiment, variant)]
	m.mu.RUnlock()
	if !ok {
		return abtest.Sample{}, fmt.Errorf("experiment %s variant %s: %w", experiment, variant, ErrVariantNotFound)
	}
	return s, nil
}

// Close is a no-op
func (m *MemorySource) Close() error {
	return nil
}
