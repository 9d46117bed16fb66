/*
	Package confirm 支付确认流程

	围绕一笔待支付订单的完整确认生命周期：
	拉取订单 → 生成/复用 QR → 订阅实时通知 → 等待到账，
	最终落在 Confirmed / Expired / Failed 三个终态之一。
*/
package confirm

// State 确认流程状态
type State string

const (
	StateIdle            State = "idle"
	StateLoading         State = "loading"
	StateAwaitingPayment State = "awaiting_payment"
	StateConfirmed       State = "confirmed"
	StateExpired         State = "expired"
	StateFailed          State = "failed"
)

// IsTerminal 是否终态
func (s State) IsTerminal() bool {
	switch s {
	case StateConfirmed, StateExpired, StateFailed:
		return true
	}
	return false
}

// String 实现 Stringer
func (s State) String() string {
	return string(s)
}
