package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/config"
)

// PostgresSchema creates the tables PostgresSource reads
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS metric_points (
	metric TEXT NOT NULL,
	ts     TIMESTAMPTZ NOT NULL,
	value  DOUBLE PRECISION,
	PRIMARY KEY (metric, ts)
);

CREATE TABLE IF NOT EXISTS experiment_variants (
	experiment  TEXT NOT NULL,
	variant     TEXT NOT NULL,
	sample_size INTEGER NOT NULL,
	conversions INTEGER NOT NULL DEFAULT 0,
	mean        DOUBLE PRECISION NOT NULL DEFAULT 0,
	std_dev     DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (experiment, variant)
);
`

const (
	selectSeriesQuery = `SELECT ts, value FROM metric_points WHERE metric = $1 ORDER BY ts`

	// $2 = asOf, $3 = start of current window, $4 = start of previous window
	selectPeriodTotalsQuery = `
SELECT
	COUNT(*) AS points,
	COALESCE(SUM(value) FILTER (WHERE ts > $3 AND ts <= $2), 0) AS current,
	COALESCE(SUM(value) FILTER (WHERE ts > $4 AND ts <= $3), 0) AS previous
FROM metric_points
WHERE metric = $1`

	selectSampleQuery = `
SELECT sample_size, conversions, mean, std_dev
FROM experiment_variants
WHERE experiment = $1 AND variant = $2`
)

type pointRow struct {
	Timestamp time.Time       `db:"ts"`
	Value     sql.NullFloat64 `db:"value"`
}

type periodTotalsRow struct {
	Points   int     `db:"points"`
	Current  float64 `db:"current"`
	Previous float64 `db:"previous"`
}

type sampleRow struct {
	SampleSize  int     `db:"sample_size"`
	Conversions int     `db:"conversions"`
	Mean        float64 `db:"mean"`
	StdDev      float64 `db:"std_dev"`
}

// PostgresSource reads series from metric_points and experiment summaries
// from experiment_variants
type PostgresSource struct {
	db *sqlx.DB
}

// NewPostgresSource connects with the lib/pq driver
func NewPostgresSource(cfg config.PostgresSourceConfig) (*PostgresSource, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return NewPostgresSourceWithDB(db), nil
}

// NewPostgresSourceWithDB wraps an open database
func NewPostgresSourceWithDB(db *sqlx.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Migrate creates the tables if they do not exist
func (p *PostgresSource) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FetchSeries returns the metric points ordered by time. NULL values are gaps.
func (p *PostgresSource) FetchSeries(ctx context.Context, metric string) (analytics.Series, error) {
	var rows []pointRow
	if err := p.db.SelectContext(ctx, &rows, selectSeriesQuery, metric); err != nil {
		return nil, fmt.Errorf("failed to fetch series %s: %w", metric, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("metric %s: %w", metric, ErrSeriesNotFound)
	}

	series := make(analytics.Series, len(rows))
	for i, row := range rows {
		series[i].Timestamp = FormatTimestamp(row.Timestamp)
		if row.Value.Valid {
			series[i].Value = analytics.Float(row.Value.Float64)
		}
	}
	return series, nil
}

// FetchPeriodAggregates sums both windows in the database
func (p *PostgresSource) FetchPeriodAggregates(ctx context.Context, metric string, period trend.PeriodType, asOf time.Time) (float64, float64, error) {
	window := time.Duration(period.Days()) * 24 * time.Hour
	curStart := asOf.Add(-window)
	prevStart := curStart.Add(-window)

	var row periodTotalsRow
	if err := p.db.GetContext(ctx, &row, selectPeriodTotalsQuery, metric, asOf, curStart, prevStart); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate %s: %w", metric, err)
	}
	if row.Points == 0 {
		return 0, 0, fmt.Errorf("metric %s: %w", metric, ErrSeriesNotFound)
	}
	return row.Current, row.Previous, nil
}

// FetchSample returns one experiment variant summary
func (p *PostgresSource) FetchSample(ctx context.Context, experiment, variant string) (abtest.Sample, error) {
	var row sampleRow
	if err := p.db.GetContext(ctx, &row, selectSampleQuery, experiment, variant); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return abtest.Sample{}, fmt.Errorf("experiment %s variant %s: %w", experiment, variant, ErrVariantNotFound)
		}
		return abtest.Sample{}, fmt.Errorf("failed to fetch sample %s/%s: %w", experiment, variant, err)
	}

	return abtest.Sample{
		SampleSize:  row.SampleSize,
		Conversions: row.Conversions,
		Mean:        row.Mean,
		StdDev:      row.StdDev,
	}, nil
}

// Close closes the database
func (p *PostgresSource) Close() error {
	return p.db.Close()
}
