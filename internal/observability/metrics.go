package observability

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// EngagementWrites counts like, follow, comment and share mutations by outcome.
	EngagementWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talenta_engagement_writes_total",
		Help: "Engagement mutations by action and result",
	}, []string{"action", "result"})

	// NotificationsPublished counts realtime notification events.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talenta_notifications_published_total",
		Help: "Realtime notification events published to Redis",
	}, []string{"event", "result"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talenta_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// StorageOperations counts object storage calls.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talenta_storage_operations_total",
		Help: "Object storage operations by kind and result",
	}, []string{"operation", "result"})

	// CacheResults counts cache lookups by cache name.
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talenta_cache_results_total",
		Help: "Cache lookups by cache and result",
	}, []string{"cache", "result"})

	// FeedQueryLatency records feed aggregation latency by sort mode.
	FeedQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talenta_feed_query_latency_seconds",
		Help:    "Feed query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"sort"})

	// RedisCommands counts Redis commands by name and result.
	RedisCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talenta_redis_commands_total",
		Help: "Redis commands by name and result",
	}, []string{"command", "result"})
)

// Result maps an error to a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFeed returns a func that records the latency of a feed query.
func ObserveFeed(sort string) func() {
	start := time.Now()
	return func() {
		FeedQueryLatency.WithLabelValues(sort).Observe(time.Since(start).Seconds())
	}
}

// RedisMetricsHook counts every Redis command. redis.Nil is a miss, not an error.
type RedisMetricsHook struct{}

var _ redis.Hook = RedisMetricsHook{}

func (RedisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (RedisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		RedisCommands.WithLabelValues(strings.ToLower(cmd.Name()), redisResult(err)).Inc()
		return err
	}
}

func (RedisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			RedisCommands.WithLabelValues(strings.ToLower(cmd.Name()), redisResult(cmd.Err())).Inc()
		}
		return err
	}
}

func redisResult(err error) string {
	if err == nil || errors.Is(err, redis.Nil) {
		return "ok"
	}
	return "error"
}
