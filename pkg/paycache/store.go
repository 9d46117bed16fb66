package paycache

import "time"

// Store 支付会话缓存存储
//
// 读操作不返回错误：条目不存在或已过期一律视为"无缓存"，
// 由调用方回退到网络加载；删除不存在的条目是安全的空操作。
type Store interface {
	// Save 写入会话，覆盖同订单号的旧条目
	Save(orderID string, session *PaymentSession) error

	// Get 读取会话，条目不存在或已过期时返回 nil
	Get(orderID string) *PaymentSession

	// Peek 读取会话但不判有效性，过期条目也照常返回；
	// 确认流程用它区分"从未有过会话"和"会话已过期"
	Peek(orderID string) *PaymentSession

	// HasValid 判断是否存在未过期的会话
	HasValid(orderID string) bool

	// TimeRemaining 会话剩余有效时长，不存在或已过期时为 0
	TimeRemaining(orderID string) time.Duration

	// Remove 删除会话，幂等
	Remove(orderID string)

	// OrderIDs 返回当前持有会话的全部订单号（包含已过期的，
	// 供过期检查服务逐一判定）
	OrderIDs() []string

	// RemoveAll 清空全部会话（登出场景），返回清理的条目数
	RemoveAll() int
}
