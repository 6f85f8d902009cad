package source

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisTestSource returns a source on a local Redis, skipping when none runs
func redisTestSource(t *testing.T, algo compression.Algorithm) *RedisSource {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping")
	}

	prefix := "insight-test-" + t.Name()
	src := NewRedisSourceWithClient(client, prefix, algo)
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		_ = src.Close()
	})
	return src
}

func TestRedisSource_Keys(t *testing.T) {
	src := NewRedisSourceWithClient(redis.NewClient(&redis.Options{}), "", compression.Snappy)
	defer func() { _ = src.Close() }()

	assert.Equal(t, "insight:series:cpu", src.seriesKey("cpu"))
	assert.Equal(t, "insight:experiment:checkout:variant_a", src.sampleKey("checkout", "variant_a"))
}

func TestRedisSource_RoundTrip(t *testing.T) {
	for _, algo := range []compression.Algorithm{compression.None, compression.Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			src := redisTestSource(t, algo)
			ctx := context.Background()
			asOf := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

			series := dailySeries(asOf, 1, 2, 3, 4)
			series[1].Value = nil
			require.NoError(t, src.StoreSeries(ctx, "cpu", series))

			got, err := src.FetchSeries(ctx, "cpu")
			require.NoError(t, err)
			assert.Equal(t, series, got)

			cur, _, err := src.FetchPeriodAggregates(ctx, "cpu", trend.PeriodWoW, asOf)
			require.NoError(t, err)
			assert.Equal(t, 8.0, cur)

			sample := abtest.Sample{SampleSize: 500, Conversions: 40}
			require.NoError(t, src.StoreSample(ctx, "checkout", abtest.VariantA, sample))
			gotSample, err := src.FetchSample(ctx, "checkout", abtest.VariantA)
			require.NoError(t, err)
			assert.Equal(t, sample, gotSample)

			_, err = src.FetchSeries(ctx, "missing")
			assert.ErrorIs(t, err, ErrSeriesNotFound)
			_, err = src.FetchSample(ctx, "checkout", abtest.VariantB)
			assert.ErrorIs(t, err, ErrVariantNotFound)
		})
	}
}
