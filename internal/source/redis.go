package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/compression"
	"github.com/soltixdb/insight/internal/config"
)

// RedisSource reads series and samples stored as framed JSON blobs
// (see compression.EncodeBlob). Keys:
//
//	<prefix>:series:<metric>
//	<prefix>:experiment:<experiment>:<variant>
type RedisSource struct {
	client *redis.Client
	prefix string
	algo   compression.Algorithm
}

// NewRedisSource connects to Redis
func NewRedisSource(cfg config.RedisSourceConfig) (*RedisSource, error) {
	algo, err := compression.ParseAlgorithm(cfg.Compression)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSourceWithClient(client, cfg.KeyPrefix, algo), nil
}

// NewRedisSourceWithClient wraps an existing client
func NewRedisSourceWithClient(client *redis.Client, prefix string, algo compression.Algorithm) *RedisSource {
	if prefix == "" {
		prefix = "insight"
	}
	return &RedisSource{client: client, prefix: prefix, algo: algo}
}

func (r *RedisSource) seriesKey(metric string) string {
	return fmt.Sprintf("%s:series:%s", r.prefix, metric)
}

func (r *RedisSource) sampleKey(experiment, variant string) string {
	return fmt.Sprintf("%s:experiment:%s:%s", r.prefix, experiment, variant)
}

func (r *RedisSource) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	blob, err := compression.EncodeBlob(r.algo, data)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, blob, 0).Err()
}

// get loads and decodes key into v; it returns redis.Nil when key is missing
func (r *RedisSource) get(ctx context.Context, key string, v interface{}) error {
	blob, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	data, err := compression.DecodeBlob(blob)
	if err != nil {
		return fmt.Errorf("key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("key %s: invalid payload: %w", key, err)
	}
	return nil
}

// StoreSeries writes the series of metric
func (r *RedisSource) StoreSeries(ctx context.Context, metric string, series analytics.Series) error {
	if err := r.put(ctx, r.seriesKey(metric), series); err != nil {
		return fmt.Errorf("failed to store series %s: %w", metric, err)
	}
	return nil
}

// StoreSample writes the summary of one experiment variant
func (r *RedisSource) StoreSample(ctx context.Context, experiment, variant string, sample abtest.Sample) error {
	if err := r.put(ctx, r.sampleKey(experiment, variant), sample); err != nil {
		return fmt.Errorf("failed to store sample %s/%s: %w", experiment, variant, err)
	}
	return nil
}

// FetchSeries reads the series of metric
func (r *RedisSource) FetchSeries(ctx context.Context, metric string) (analytics.Series, error) {
	var series analytics.Series
	if err := r.get(ctx, r.seriesKey(metric), &series); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("metric %s: %w", metric, ErrSeriesNotFound)
		}
		return nil, fmt.Errorf("failed to fetch series %s: %w", metric, err)
	}
	return series, nil
}

// FetchPeriodAggregates sums the stored series over the two windows
func (r *RedisSource) FetchPeriodAggregates(ctx context.Context, metric string, period trend.PeriodType, asOf time.Time) (float64, float64, error) {
	series, err := r.FetchSeries(ctx, metric)
	if err != nil {
		return 0, 0, err
	}
	cur, prev := WindowSums(series, period.Days(), asOf)
	return cur, prev, nil
}

// FetchSample reads one experiment variant summary
func (r *RedisSource) FetchSample(ctx context.Context, experiment, variant string) (abtest.Sample, error) {
	var sample abtest.Sample
	if err := r.get(ctx, r.sampleKey(experiment, variant), &sample); err != nil {
		if errors.Is(err, redis.Nil) {
			return abtest.Sample{}, fmt.Errorf("experiment %s variant %s: %w", experiment, variant, ErrVariantNotFound)
		}
		return abtest.Sample{}, fmt.Errorf("failed to fetch sample %s/%s: %w", experiment, variant, err)
	}
	return sample, nil
}

// Close closes the client
func (r *RedisSource) Close() error {
	return r.client.Close()
}
