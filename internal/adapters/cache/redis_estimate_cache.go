package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "estimate:district:"

// Route estimates age as roads and traffic patterns change; a day is close
// enough for cost modeling.
const DefaultEstimateTTL = 24 * time.Hour

// RedisEstimateCache is a Redis-backed cache of district route estimates,
// shared across runs and processes. Keys are normalized districts.
type RedisEstimateCache struct {
	Client *redis.Client
	TTL    time.Duration
	Log    *zap.SugaredLogger
}

func NewRedisEstimateCache(client *redis.Client, log *zap.SugaredLogger) *RedisEstimateCache {
	return &RedisEstimateCache{
		Client: client,
		TTL:    DefaultEstimateTTL,
		Log:    log,
	}
}

type cachedEstimate struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// Fetch cached estimates for the given districts in a single MGET.
func (r *RedisEstimateCache) GetMany(ctx context.Context, districts []string) (_ map[string]domain.RouteEstimate, err error) {
	defer obs.Time(r.Log, "estimate.cache.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("redis estimate cache: client is nil")
	}

	uniq := dedupeDistricts(districts)
	if len(uniq) == 0 {
		return map[string]domain.RouteEstimate{}, nil
	}

	keys := make([]string, 0, len(uniq))
	for _, d := range uniq {
		keys = append(keys, redisKeyPrefix+d)
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get estimate cache: mget: %w", err)
	}

	out := make(map[string]domain.RouteEstimate, len(uniq))
	for i, v := range vals {
		if v == nil {
			continue
		}

		s, ok := v.(string)
		if !ok {
			continue
		}

		var c cachedEstimate
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			// A corrupt entry behaves as a miss; it will be overwritten.
			if r.Log != nil {
				r.Log.Warnw("corrupt estimate cache entry", "district", uniq[i], "err", err)
			}
			continue
		}

		out[uniq[i]] = domain.RouteEstimate{
			DistanceKm:      c.DistanceKm,
			DurationMinutes: c.DurationMinutes,
		}
	}

	return out, nil
}

// Store estimates with the configured TTL using a single pipeline.
func (r *RedisEstimateCache) PutMany(ctx context.Context, estimates map[string]domain.RouteEstimate) error {
	if r.Client == nil {
		return errors.New("redis estimate cache: client is nil")
	}

	if len(estimates) == 0 {
		return nil
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultEstimateTTL
	}

	pipe := r.Client.Pipeline()
	for d, est := range estimates {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("insert estimate cache: empty district key")
		}

		payload, err := json.Marshal(cachedEstimate{
			DistanceKm:      est.DistanceKm,
			DurationMinutes: est.DurationMinutes,
		})
		if err != nil {
			return fmt.Errorf("insert estimate cache district=%q: %w", d, err)
		}

		pipe.Set(ctx, redisKeyPrefix+d, payload, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert estimate cache: pipeline exec: %w", err)
	}

	return nil
}

func dedupeDistricts(districts []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(districts))
	for _, d := range districts {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	return uniq
}
