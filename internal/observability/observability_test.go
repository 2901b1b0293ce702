package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "talenta-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "feed", "list")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestInitTracing_Stdout(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "talenta-test", Enabled: true, Endpoint: "stdout", SamplerRatio: 1})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("x")))
}

func TestRedisMetricsHook_CountsCommands(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	rdb.AddHook(RedisMetricsHook{})

	before := testutil.ToFloat64(RedisCommands.WithLabelValues("get", "ok"))
	_, err = rdb.Get(context.Background(), "missing").Result()
	assert.ErrorIs(t, err, redis.Nil)
	after := testutil.ToFloat64(RedisCommands.WithLabelValues("get", "ok"))
	assert.Equal(t, before+1, after)
}
