/*
	Package realtime 支付实时通知频道

	基于 Redis Pub/Sub 实现，每个待支付交易对应一个
	payment_{gencode} 频道，webhook 确认到账后向频道广播
	PaymentSuccess 事件，确认流程订阅后据此推进状态。
*/
package realtime

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// GroupPrefix 频道名前缀
const GroupPrefix = "payment_"

// GroupName 根据交易码计算频道名
func GroupName(gencode string) string {
	return GroupPrefix + gencode
}

// PaymentEvent 支付成功事件载荷
//
// orderId 字段历史上有的发布方传字符串、有的传数字，
// 所以这里保留原样，匹配时统一转字符串比较。
type PaymentEvent struct {
	Gencode   string      `json:"gencode,omitempty"`
	OrderID   interface{} `json:"orderId,omitempty"`
	Amount    int64       `json:"amount,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
}

// Matches 判断事件是否属于指定交易
//
// 宽松匹配：交易码一致，或订单号一致（不区分数字/字符串），
// 任一命中即算匹配。两个都为空不命中。
func (e PaymentEvent) Matches(gencode, orderID string) bool {
	if gencode != "" && e.Gencode == gencode {
		return true
	}
	eventOrderID := strings.TrimSpace(cast.ToString(e.OrderID))
	if orderID != "" && eventOrderID == orderID {
		return true
	}
	return false
}

// Encode 序列化为频道消息
func (e PaymentEvent) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeEvent 解析频道消息
func DecodeEvent(payload string) (PaymentEvent, error) {
	var event PaymentEvent
	err := json.Unmarshal([]byte(payload), &event)
	return event, err
}
