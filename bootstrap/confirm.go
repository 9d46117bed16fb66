package bootstrap

import (
	"techzone/pkg/confirm"
	"techzone/pkg/logger"
	"techzone/pkg/orders"
	"techzone/pkg/paycache"
	"techzone/pkg/qr"
	"techzone/pkg/realtime"
)

// SetupConfirm 初始化支付确认流程管理器
// 依赖 Realtime、PayCache 和后端客户端，放在它们之后调用
func SetupConfirm(store paycache.Store, qrClient *qr.Client, ordersClient *orders.Client) {
	confirm.DefaultManager = confirm.NewManager(confirm.Deps{
		Cache:      store,
		QR:         qrClient,
		Orders:     ordersClient,
		Channel:    realtime.Default,
		LastOrders: paycache.NewLastOrderRecorder(),
	})
	logger.InfoString("Confirm", "Setup", "支付确认流程管理器初始化成功")
}
