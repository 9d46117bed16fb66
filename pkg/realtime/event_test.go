package realtime

import (
	"testing"
)

func TestGroupName(t *testing.T) {
	if got := GroupName("ORDER_88_20250601120000_ab12cd34"); got != "payment_ORDER_88_20250601120000_ab12cd34" {
		t.Errorf("GroupName = %q", got)
	}
}

func TestEventMatchesGencode(t *testing.T) {
	event := PaymentEvent{Gencode: "ORDER_88_20250601120000_ab12cd34"}

	if !event.Matches("ORDER_88_20250601120000_ab12cd34", "") {
		t.Error("交易码一致应当命中")
	}
	if event.Matches("ORDER_99_20250601120000_ffffffff", "") {
		t.Error("交易码不一致不应命中")
	}
}

func TestEventMatchesOrderID(t *testing.T) {
	// orderId 是数字也要能和字符串订单号对上
	numeric := PaymentEvent{OrderID: float64(88)} // JSON 数字解析成 float64
	if !numeric.Matches("", "88") {
		t.Error("数字 orderId 应当命中字符串订单号")
	}

	str := PaymentEvent{OrderID: "88"}
	if !str.Matches("", "88") {
		t.Error("字符串 orderId 应当命中")
	}
	if str.Matches("", "99") {
		t.Error("订单号不一致不应命中")
	}
}

func TestEventMatchesEither(t *testing.T) {
	// 宽松匹配：交易码或订单号任一命中即可
	event := PaymentEvent{Gencode: "gen-a", OrderID: "88"}

	if !event.Matches("gen-a", "99") {
		t.Error("交易码命中即可")
	}
	if !event.Matches("gen-b", "88") {
		t.Error("订单号命中即可")
	}
	if event.Matches("gen-b", "99") {
		t.Error("两者都不一致不应命中")
	}

	// 两边都为空不命中
	empty := PaymentEvent{}
	if empty.Matches("", "") {
		t.Error("空事件不应命中空条件")
	}
}

func TestEventDecodeNumericOrderID(t *testing.T) {
	// webhook 侧有的发布方把 orderId 发成数字
	event, err := DecodeEvent(`{"gencode":"gen-a","orderId":88,"amount":150000}`)
	if err != nil {
		t.Fatalf("DecodeEvent 失败: %v", err)
	}
	if !event.Matches("", "88") {
		t.Error("数字 orderId 解析后应当命中")
	}
	if event.Amount != 150000 {
		t.Errorf("Amount = %d", event.Amount)
	}
}
