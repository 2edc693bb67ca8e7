package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/redis/go-redis/v9"
)

const catalogueKey = "cartver"

// setIfVersion writes the entry only while the catalogue and session
// counters still match the version the reader started from.
var setIfVersion = redis.NewScript(`
local cur = (redis.call('GET', KEYS[1]) or '0') .. ':' .. (redis.call('GET', KEYS[2]) or '0')
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[3], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

type entry struct {
	Version string            `json:"version"`
	Lines   []domain.CartLine `json:"lines"`
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

// Version combines the catalogue counter with the per-session counter.
func (r *RedisCache) Version(ctx context.Context, sessionID string) (string, error) {
	vals, err := r.client.MGet(ctx, catalogueKey, versionKey(sessionID)).Result()
	if err != nil {
		return "", fmt.Errorf("redis version: %w", err)
	}
	return joinVersion(vals[0], vals[1]), nil
}

func (r *RedisCache) Get(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	vals, err := r.client.MGet(ctx, catalogueKey, versionKey(sessionID), cacheKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	data, ok := vals[2].(string)
	if !ok {
		return nil, ErrCacheMiss
	}

	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if e.Version != joinVersion(vals[0], vals[1]) {
		return nil, ErrCacheMiss
	}
	return e.Lines, nil
}

// Set stores the lines with a jittered TTL so carts written together do not
// expire together. It returns ErrStale when the version no longer matches.
func (r *RedisCache) Set(ctx context.Context, sessionID, version string, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(entry{Version: version, Lines: lines})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(60))*time.Second
	keys := []string{catalogueKey, versionKey(sessionID), cacheKey(sessionID)}
	stored, err := setIfVersion.Run(ctx, r.client, keys, version, data, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

// Delete drops the entry and bumps the session counter so in-flight reads
// started before the mutation cannot repopulate it.
func (r *RedisCache) Delete(ctx context.Context, sessionID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(sessionID))
		pipe.Expire(ctx, versionKey(sessionID), r.baseTTL+time.Hour)
		pipe.Del(ctx, cacheKey(sessionID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (r *RedisCache) InvalidateAll(ctx context.Context) error {
	if err := r.client.Incr(ctx, catalogueKey).Err(); err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func joinVersion(catalogue, session any) string {
	return counter(catalogue) + ":" + counter(session)
}

func counter(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "0"
}

func cacheKey(sessionID string) string {
	return "cart:" + sessionID
}

func versionKey(sessionID string) string {
	return "cartver:" + sessionID
}
