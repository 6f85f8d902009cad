package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dailySeries builds one point per day ending at end, oldest first
func dailySeries(end time.Time, values ...float64) analytics.Series {
	s := make(analytics.Series, len(values))
	start := end.AddDate(0, 0, -(len(values) - 1))
	for i, v := range values {
		s[i] = analytics.TimeSeriesPoint{
			Timestamp: FormatTimestamp(start.AddDate(0, 0, i)),
			Value:     analytics.Float(v),
		}
	}
	return s
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2024-03-01T10:00:00Z", true},
		{"2024-03-01T10:00:00.123+02:00", true},
		{"2024-03-01T10:00:00", true},
		{"2024-03-01 10:00:00", true},
		{"2024-03-01", true},
		{" 2024-03-01 ", true},
		{"03/01/2024", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := ParseTimestamp(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestWindowSums(t *testing.T) {
	asOf := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	// 14 days: first week all 1s, second week all 2s
	s := dailySeries(asOf, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2)

	cur, prev := WindowSums(s, 7, asOf)
	assert.Equal(t, 14.0, cur)
	assert.Equal(t, 7.0, prev)
}

func TestWindowSums_SkipsGapsAndBadTimestamps(t *testing.T) {
	asOf := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	s := dailySeries(asOf, 5, 5, 5)
	s[1].Value = nil
	s = append(s, analytics.TimeSeriesPoint{Timestamp: "yesterday", Value: analytics.Float(100)})

	cur, prev := WindowSums(s, 7, asOf)
	assert.Equal(t, 10.0, cur)
	assert.Equal(t, 0.0, prev)
}

func TestWindowSums_BoundaryBelongsToEarlierWindow(t *testing.T) {
	asOf := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	boundary := asOf.AddDate(0, 0, -7)
	s := analytics.Series{
		{Timestamp: FormatTimestamp(boundary), Value: analytics.Float(3)},
		{Timestamp: FormatTimestamp(asOf), Value: analytics.Float(4)},
		{Timestamp: FormatTimestamp(asOf.Add(time.Hour)), Value: analytics.Float(99)},
	}

	cur, prev := WindowSums(s, 7, asOf)
	assert.Equal(t, 4.0, cur)
	assert.Equal(t, 3.0, prev)
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySource()
	asOf := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	original := dailySeries(asOf, 1, 2, 3)
	m.PutSeries("cpu", original)
	m.PutSample("checkout", abtest.VariantA, abtest.Sample{SampleSize: 1000, Conversions: 100})

	got, err := m.FetchSeries(ctx, "cpu")
	require.NoError(t, err)
	assert.Equal(t, original, got)

	// Stored data is isolated from caller mutation
	got[0] = analytics.TimeSeriesPoint{}
	again, err := m.FetchSeries(ctx, "cpu")
	require.NoError(t, err)
	assert.Equal(t, original[0], again[0])

	_, err = m.FetchSeries(ctx, "mem")
	assert.True(t, errors.Is(err, ErrSeriesNotFound))

	sample, err := m.FetchSample(ctx, "checkout", abtest.VariantA)
	require.NoError(t, err)
	assert.Equal(t, 1000, sample.SampleSize)

	_, err = m.FetchSample(ctx, "checkout", abtest.VariantB)
	assert.True(t, errors.Is(err, ErrVariantNotFound))

	cur, prev, err := m.FetchPeriodAggregates(ctx, "cpu", trend.PeriodWoW, asOf)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cur)
	assert.Equal(t, 0.0, prev)

	assert.ElementsMatch(t, []string{"cpu"}, m.Metrics())
	assert.NoError(t, m.Close())
}

func TestMemorySource_CancelledContext(t *testing.T) {
	m := NewMemorySource()
	m.PutSeries("cpu", dailySeries(time.Now(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.FetchSeries(ctx, "cpu")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	src, err := New(config.SourceConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemorySource{}, src)

	_, err = New(config.SourceConfig{Type: "mongo"})
	assert.Error(t, err)

	_, err = New(config.SourceConfig{Type: "excel", Excel: config.ExcelSourceConfig{Path: "/nonexistent.xlsx"}})
	assert.Error(t, err)
}
