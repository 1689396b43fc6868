package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-route-service/internal/domain"
)

const redisGeocodePrefix = "geocode:"

// RedisGeocodeCache is a Redis-backed geocode cache for deployments where
// multiple instances should share resolved coordinates. Entries carry a TTL
// so a bad upstream result eventually ages out.
type RedisGeocodeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

type redisGeocodeEntry struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fetch cached coordinates for the given place names.
func (r *RedisGeocodeCache) GetMany(ctx context.Context, names []string) (map[string]domain.Coordinates, error) {
	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(names))
	keys := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
		keys = append(keys, redisGeocodePrefix+n)
	}

	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry redisGeocodeEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			// Treat a corrupt entry as a miss; it will be rewritten.
			continue
		}
		out[uniq[i]] = domain.Coordinates{Lat: entry.Lat, Lng: entry.Lng}
	}

	return out, nil
}

// Store place name -> coordinate mappings in the cache.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for place, c := range results {
		if strings.TrimSpace(place) == "" {
			return fmt.Errorf("insert geocode cache: empty place key")
		}
		raw, err := json.Marshal(redisGeocodeEntry{Lat: c.Lat, Lng: c.Lng})
		if err != nil {
			return fmt.Errorf("insert geocode cache place=%q: marshal: %w", place, err)
		}
		pipe.Set(ctx, redisGeocodePrefix+place, raw, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: redis pipeline: %w", err)
	}
	return nil
}
