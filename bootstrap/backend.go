package bootstrap

import (
	"fmt"
	"time"

	"techzone/pkg/config"
	"techzone/pkg/logger"
	"techzone/pkg/orders"
	"techzone/pkg/qr"
)

// SetupBackends 初始化后端接口客户端
// 返回 QR 生成客户端和订单服务客户端
func SetupBackends() (*qr.Client, *orders.Client) {
	qrBaseURL := config.GetString("backend.qr_base_url")
	ordersBaseURL := config.GetString("backend.orders_base_url")
	timeout := time.Duration(config.GetInt("backend.timeout")) * time.Second
	retries := config.GetInt("backend.max_retries")

	logger.DebugString("Backend", "Config", fmt.Sprintf(
		"当前配置: QR=%s, Orders=%s, Timeout=%s, MaxRetries=%d",
		qrBaseURL, ordersBaseURL, timeout, retries,
	))

	qrClient := qr.NewClient(qr.Config{
		BaseURL: qrBaseURL,
		Timeout: timeout,
		Retries: retries,
	})
	ordersClient := orders.NewClient(orders.Config{
		BaseURL: ordersBaseURL,
		Timeout: timeout,
		Retries: retries,
	})

	logger.InfoString("Backend", "Setup", "后端接口客户端初始化成功")
	return qrClient, ordersClient
}
