package paycache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"techzone/pkg/logger"
	"techzone/pkg/redis"
)

// RedisStore Redis 支付会话存储
// 会话以 JSON 形式写入 cache 库，键带 payment_cache_ 前缀；
// 有效性判定以条目内的 created_at 为准，Redis 的键过期只作兜底
type RedisStore struct {
	client  *redis.RedisClient
	timeout time.Duration
	nowFunc func() time.Time
}

// NewRedisStore 创建 Redis 存储，使用 cache 专用实例
func NewRedisStore() *RedisStore {
	return &RedisStore{
		client:  redis.GetRedis(redis.CacheDB),
		timeout: 5 * time.Second,
		nowFunc: time.Now,
	}
}

func cacheKey(orderID string) string {
	return KeyPrefix + orderID
}

// Save 写入会话
// Redis 键的过期时间设为 2 倍 TTL，保证过期检查服务在 TTL 刚过时
// 仍能读到条目并触发订单取消
func (r *RedisStore) Save(orderID string, session *PaymentSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Client.Set(ctx, cacheKey(orderID), payload, 2*TTL).Err()
}

// Get 读取会话，条目不存在、解析失败或已过期时返回 nil
func (r *RedisStore) Get(orderID string) *PaymentSession {
	session := r.load(orderID)
	if session == nil {
		return nil
	}
	if !session.ValidAt(r.nowFunc()) {
		return nil
	}
	return session
}

// Peek 读取会话，不判有效性
func (r *RedisStore) Peek(orderID string) *PaymentSession {
	return r.load(orderID)
}

// HasValid 判断是否存在未过期的会话
func (r *RedisStore) HasValid(orderID string) bool {
	return r.Get(orderID) != nil
}

// TimeRemaining 会话剩余有效时长
func (r *RedisStore) TimeRemaining(orderID string) time.Duration {
	session := r.load(orderID)
	if session == nil {
		return 0
	}
	return session.RemainingAt(r.nowFunc())
}

// Remove 删除会话，幂等
func (r *RedisStore) Remove(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Client.Del(ctx, cacheKey(orderID)).Err(); err != nil {
		logger.ErrorString("PayCache", "Remove", err.Error())
	}
}

// OrderIDs 返回当前持有会话的全部订单号
func (r *RedisStore) OrderIDs() []string {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	var ids []string
	iter := r.client.Client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), KeyPrefix))
	}
	if err := iter.Err(); err != nil {
		logger.ErrorString("PayCache", "OrderIDs", err.Error())
	}
	return ids
}

// RemoveAll 清空全部会话
func (r *RedisStore) RemoveAll() int {
	ids := r.OrderIDs()
	for _, id := range ids {
		r.Remove(id)
	}
	return len(ids)
}

// load 读取并反序列化条目，不做有效性判定
func (r *RedisStore) load(orderID string) *PaymentSession {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	payload, err := r.client.Client.Get(ctx, cacheKey(orderID)).Result()
	if err != nil {
		if err != goredis.Nil {
			logger.ErrorString("PayCache", "Get", err.Error())
		}
		return nil
	}

	var session PaymentSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		// 损坏的条目直接删除
		logger.WarnString("PayCache", "Get", "缓存条目解析失败，已删除："+orderID)
		r.Remove(orderID)
		return nil
	}
	return &session
}
