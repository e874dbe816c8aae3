package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey 是注册记录在 redis 中的默认 key。
const DefaultRedisKey = "jadesigner:registration"

// deleteIfOwner 仅在记录 ID 匹配时删除，保证撤销旧注册不会误删新注册。
var deleteIfOwner = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
local rec = cjson.decode(v)
if rec.id == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// RedisStore 将注册记录保存在 redis 中，key 的 TTL 即不活跃窗口。
type RedisStore struct {
	client redis.UniversalClient
	key    string
	clock  Clock
}

// NewRedisStore 创建 redis 存储，key 为空时使用 DefaultRedisKey。
func NewRedisStore(client redis.UniversalClient, key string, clock Clock) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if clock == nil {
		clock = NewRealClock()
	}
	return &RedisStore{client: client, key: key, clock: clock}
}

// Load 实现 Store。
func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode registration: %w", err)
	}
	if rec.Expired(s.clock.Now()) {
		return nil, nil
	}
	return &rec, nil
}

// Save 实现 Store。
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	ttl := rec.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return s.client.Del(ctx, s.key).Err()
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

// Delete 实现 Store。
func (s *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := deleteIfOwner.Run(ctx, s.client, []string{s.key}, id).Int()
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return n == 1, nil
}
