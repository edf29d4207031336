package cache

import (
	"context"
	"errors"
	"time"

	"github.com/quickprintz/storefront/internal/cart"

	"github.com/redis/go-redis/v9"
)

var ErrRedisDisabled = errors.New("redis disabled")

// RedisCartSlot 以 Redis 字符串保存购物车快照
type RedisCartSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCartSlot 创建 Redis 购物车槽，ttl 为 0 表示不过期
func NewRedisCartSlot(client *redis.Client, key string, ttl time.Duration) *RedisCartSlot {
	return &RedisCartSlot{client: client, key: BuildKey("cart:" + key), ttl: ttl}
}

// RedisCartSlotFactory 使用全局客户端创建购物车槽
func RedisCartSlotFactory(ttl time.Duration) cart.SlotFactory {
	return func(key string) cart.Slot {
		return NewRedisCartSlot(Client(), key, ttl)
	}
}

// Key 返回完整的 Redis key
func (s *RedisCartSlot) Key() string {
	return s.key
}

func (s *RedisCartSlot) Read(ctx context.Context) ([]byte, error) {
	if s.client == nil {
		return nil, ErrRedisDisabled
	}
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisCartSlot) Write(ctx context.Context, data []byte) error {
	if s.client == nil {
		return ErrRedisDisabled
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}
