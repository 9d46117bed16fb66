// Package paycache 支付会话缓存
//
// 结账产生待支付订单后，支付会话（金额、gencode、QR 地址、创建时间）
// 会以订单号为键写入缓存，有效期 30 分钟。超过有效期的会话不允许再用来
// 渲染 QR，对应订单按已放弃处理，由过期检查服务负责取消。
package paycache

import (
	"time"
)

// TTL 支付会话有效期
const TTL = 30 * time.Minute

// KeyPrefix 缓存键前缀
const KeyPrefix = "payment_cache_"

// PaymentSession 支付会话
// amount 创建后不可变；qr_url 可以为空，首次渲染时再懒加载
type PaymentSession struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Gencode   string    `json:"gencode"`
	QrURL     string    `json:"qr_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession 创建支付会话
func NewSession(orderID string, amount int64, gencode string) *PaymentSession {
	return &PaymentSession{
		OrderID:   orderID,
		Amount:    amount,
		Gencode:   gencode,
		CreatedAt: time.Now(),
	}
}

// TransactionCode 返回与实时频道、后端 QR 记录关联的交易码
// gencode 缺失时退化为订单号字符串
func (s *PaymentSession) TransactionCode() string {
	if s.Gencode != "" {
		return s.Gencode
	}
	return s.OrderID
}

// ValidAt 判断会话在给定时刻是否有效
// 注意是严格小于：now - createdAt == TTL 时会话已失效
func (s *PaymentSession) ValidAt(now time.Time) bool {
	return now.Sub(s.CreatedAt) < TTL
}

// RemainingAt 计算给定时刻会话的剩余有效时长，最小为 0
func (s *PaymentSession) RemainingAt(now time.Time) time.Duration {
	remaining := TTL - now.Sub(s.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
