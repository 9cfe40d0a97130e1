package routing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/trikesim/core/geo"
)

// RedisConfig locates the route cache.
type RedisConfig struct {
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	TTLSeconds int    `json:"ttl_seconds"`
	Prefix     string `json:"prefix"`
}

// RedisCache is a routing.RouteCache shared between processes. Unreachable
// pairs are stored as JSON null.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to Redis and pings it.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return newRedisCache(client, cfg), nil
}

func newRedisCache(client *redis.Client, cfg RedisConfig) *RedisCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "trikesim:"
	}
	return &RedisCache{client: client, ttl: time.Duration(cfg.TTLSeconds) * time.Second, prefix: prefix}
}

// Get implements routing.RouteCache.
func (r *RedisCache) Get(ctx context.Context, key string) (geo.Path, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	path, err := decodePath(raw)
	if err != nil {
		return nil, false, err
	}
	return path, true, nil
}

// Set implements routing.RouteCache.
func (r *RedisCache) Set(ctx context.Context, key string, path geo.Path) error {
	raw, err := encodePath(path)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err()
}

// Close closes the client.
func (r *RedisCache) Close() error { return r.client.Close() }

func encodePath(p geo.Path) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	coords := make([][2]float64, len(p))
	for i, pt := range p {
		coords[i] = [2]float64{pt[0], pt[1]}
	}
	return json.Marshal(coords)
}

func decodePath(raw []byte) (geo.Path, error) {
	var coords [][2]float64
	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, nil
	}
	p := make(geo.Path, len(coords))
	for i, c := range coords {
		p[i] = geo.NewPoint(c[0], c[1])
	}
	return p, nil
}
