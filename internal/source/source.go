// Package source retrieves the series and experiment summaries the analytics
// service works on. Backends: in-memory, Redis, PostgreSQL and Excel.
package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
)

var (
	// ErrSeriesNotFound is returned when a metric has no stored series
	ErrSeriesNotFound = errors.New("series not found")

	// ErrVariantNotFound is returned when an experiment variant has no summary
	ErrVariantNotFound = errors.New("experiment variant not found")
)

// SeriesSource is the data-retrieval collaborator of the analytics service
type SeriesSource interface {
	// FetchSeries returns the full series of a metric in time order
	FetchSeries(ctx context.Context, metric string) (analytics.Series, error)

	// FetchPeriodAggregates returns the metric total of the period ending at
	// asOf and of the period before it
	FetchPeriodAggregates(ctx context.Context, metric string, period trend.PeriodType, asOf time.Time) (current, previous float64, err error)

	// FetchSample returns the summary of one experiment variant
	FetchSample(ctx context.Context, experiment, variant string) (abtest.Sample, error)

	// Close releases connections
	Close() error
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats stored by the backends
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way series timestamps are returned
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// WindowSums sums present values in (asOf-days, asOf] and in the window of
// equal length before it. Points with unparseable timestamps are ignored.
func WindowSums(series analytics.Series, days int, asOf time.Time) (current, previous float64) {
	window := time.Duration(days) * 24 * time.Hour
	curStart := asOf.Add(-window)
	prevStart := curStart.Add(-window)

	for _, p := range series {
		if !p.IsPresent() {
			continue
		}
		ts, ok := ParseTimestamp(p.Timestamp)
		if !ok {
			continue
		}
		switch {
		case ts.After(curStart) && !ts.After(asOf):
			current += *p.Value
		case ts.After(prevStart) && !ts.After(curStart):
			previous += *p.Value
		}
	}
	return current, previous
}
