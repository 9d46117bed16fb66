package paycache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"techzone/pkg/logger"
	"techzone/pkg/redis"
)

// LastOrderKey 最近完成订单的存储键
const LastOrderKey = "last_order"

// LastOrder 最近一次完成支付的订单记录
// 支付确认成功后写入，订单完成页读取
type LastOrder struct {
	OrderID     string    `json:"order_id"`
	Amount      int64     `json:"amount"`
	Gencode     string    `json:"gencode"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// LastOrderRecorder 最近完成订单的读写
type LastOrderRecorder struct {
	client *redis.RedisClient
}

// NewLastOrderRecorder 创建记录器，使用主库实例
func NewLastOrderRecorder() *LastOrderRecorder {
	return &LastOrderRecorder{client: redis.GetRedis(redis.MainDB)}
}

// Save 写入最近完成订单
func (l *LastOrderRecorder) Save(record *LastOrder) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.client.Client.Set(ctx, LastOrderKey, payload, 0).Err()
}

// Get 读取最近完成订单，没有记录时返回 nil
func (l *LastOrderRecorder) Get() *LastOrder {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := l.client.Client.Get(ctx, LastOrderKey).Result()
	if err != nil {
		if err != goredis.Nil {
			logger.ErrorString("PayCache", "LastOrder", err.Error())
		}
		return nil
	}

	var record LastOrder
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		logger.ErrorString("PayCache", "LastOrder", err.Error())
		return nil
	}
	return &record
}
