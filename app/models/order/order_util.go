package order

import "strings"

// Status 订单状态
type Status string

const (
	StatusPending   Status = "pending"   // 待支付
	StatusPaid      Status = "paid"      // 已支付
	StatusShipping  Status = "shipping"  // 配送中
	StatusDelivered Status = "delivered" // 已送达
	StatusCancelled Status = "cancelled" // 已取消
)

// PaymentType 支付方式
type PaymentType string

const (
	TypeCOD      PaymentType = "COD"      // 货到付款
	TypeTransfer PaymentType = "Transfer" // 银行转账
	TypeATM      PaymentType = "ATM"      // ATM 卡
)

// IsPending 检查订单是否待支付
func (o *Order) IsPending() bool {
	return strings.EqualFold(o.Status, string(StatusPending))
}

// IsQrEligible 检查支付方式是否支持扫码支付
// 仅 Transfer / ATM 两种方式会生成 QR
func (o *Order) IsQrEligible() bool {
	return IsQrEligibleType(o.Types)
}

// IsQrEligibleType 判断给定支付方式是否支持扫码支付
func IsQrEligibleType(types string) bool {
	t := strings.ToLower(strings.TrimSpace(types))
	return t == "transfer" || t == "atm"
}

// TypesDisplay 支付方式的展示文案
func (o *Order) TypesDisplay() string {
	switch PaymentType(o.Types) {
	case TypeCOD:
		return "Thanh toán khi nhận hàng"
	case TypeTransfer:
		return "Chuyển khoản"
	case TypeATM:
		return "Thẻ ATM"
	default:
		return o.Types
	}
}
