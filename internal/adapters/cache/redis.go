package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
)

const (
	latestSnapshotKey = "factory:latest"

	// Samples and the latest snapshot expire after the retention window;
	// a cleanup routine trims sorted sets on top of the TTLs.
	retention = 10 * time.Minute
)

// RedisAdapter caches the latest factory snapshot and a short per-item
// net-rate history backing the analysis time window.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) port.SnapshotCache {
	return &RedisAdapter{client: client}
}

// StoreSnapshot stores the state under the latest key and appends one
// net-rate sample per planet item to the time-series sorted sets.
func (r *RedisAdapter) StoreSnapshot(ctx context.Context, state *domain.FactoryState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal factory state: %w", err)
	}
	if err := r.client.Set(ctx, latestSnapshotKey, payload, retention).Err(); err != nil {
		return fmt.Errorf("failed to set latest snapshot: %w", err)
	}

	epoch := state.Timestamp.Unix()
	for pid, planet := range state.Planets {
		for name, metrics := range planet.Production {
			key := timeSeriesKey(pid, name)
			member := fmt.Sprintf("%d:%s", epoch, strconv.FormatFloat(metrics.NetRate, 'f', -1, 64))
			if err := r.client.ZAdd(ctx, key, redis.Z{
				Score:  float64(epoch),
				Member: member,
			}).Err(); err != nil {
				return fmt.Errorf("failed to add rate sample: %w", err)
			}
			r.client.Expire(ctx, key, retention)
		}
	}

	return nil
}

// LatestSnapshot returns the most recently stored snapshot.
func (r *RedisAdapter) LatestSnapshot(ctx context.Context) (*domain.FactoryState, error) {
	payload, err := r.client.Get(ctx, latestSnapshotKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("no cached snapshot available")
		}
		return nil, fmt.Errorf("failed to get cached snapshot: %w", err)
	}

	var state domain.FactoryState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &state, nil
}

// NetRateHistory returns the cached samples for an item within the trailing
// window, oldest first.
func (r *RedisAdapter) NetRateHistory(ctx context.Context, planetID int, item string, window time.Duration) ([]domain.RateSample, error) {
	now := time.Now()
	members, err := r.client.ZRangeByScore(ctx, timeSeriesKey(planetID, item), &redis.ZRangeBy{
		Min: strconv.FormatInt(now.Add(-window).Unix(), 10),
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get rate history: %w", err)
	}

	samples := make([]domain.RateSample, 0, len(members))
	for _, member := range members {
		sample, ok := parseRateSample(member)
		if !ok {
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// CleanupOldData trims sorted-set entries older than the given duration.
func (r *RedisAdapter) CleanupOldData(ctx context.Context, olderThan time.Duration) error {
	cutoff := strconv.FormatInt(time.Now().Add(-olderThan).Unix(), 10)

	keys, err := r.client.Keys(ctx, "timeseries:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list timeseries keys: %w", err)
	}
	for _, key := range keys {
		if err := r.client.ZRemRangeByScore(ctx, key, "0", cutoff).Err(); err != nil {
			continue
		}
	}
	return nil
}

// Ping checks Redis connection health.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func timeSeriesKey(planetID int, item string) string {
	return fmt.Sprintf("timeseries:%d:%s", planetID, item)
}

// parseRateSample decodes a "epoch:rate" sorted-set member.
func parseRateSample(member string) (domain.RateSample, bool) {
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return domain.RateSample{}, false
	}
	epoch, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.RateSample{}, false
	}
	rate, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.RateSample{}, false
	}
	return domain.RateSample{Timestamp: epoch, NetRate: rate}, true
}
