package bootstrap

import (
	"time"

	"techzone/pkg/config"
	"techzone/pkg/expiry"
	"techzone/pkg/logger"
	"techzone/pkg/orders"
	"techzone/pkg/paycache"
)

// SetupExpiry 启动过期支付会话的回收任务
func SetupExpiry(store paycache.Store, ordersClient *orders.Client) *expiry.Worker {
	interval := time.Duration(config.GetInt("cache.expiry_interval")) * time.Second
	worker := expiry.NewWorker(store, ordersClient, interval)
	worker.Start()
	logger.InfoString("Expiry", "Setup", "过期会话回收任务已启动")
	return worker
}
