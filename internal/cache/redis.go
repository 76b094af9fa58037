package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"watts-backend/internal/metrics"
)

// Read-model cache keys
const (
	DashboardSummaryKey      = "dashboard:summary"
	AnalyticsCycleSummaryKey = "analytics:cycle-summary"
	AnalyticsBreakdownKey    = "analytics:meter-breakdown"
)

// client is nil when Redis is disabled or unreachable; every helper then
// degrades to a no-op.
var client *redis.Client

// Init connects to Redis. On failure the client stays nil.
func Init(addr, password string, db int) error {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

func GetClient() *redis.Client {
	return client
}

func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// GetJSON decodes a cached value into dest.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data, ok := GetCached(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	SetCached(ctx, key, data, ttl)
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// ReadModelKeys lists every cached read model.
var ReadModelKeys = []string{
	DashboardSummaryKey,
	AnalyticsCycleSummaryKey,
	AnalyticsBreakdownKey,
}

// InvalidateReadModels clears dashboard and analytics caches.
// Called after any write to meters, cycles, readings, slabs or settings.
func InvalidateReadModels(ctx context.Context) {
	InvalidateKeys(ctx, ReadModelKeys...)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
