package bootstrap

import (
	"techzone/pkg/config"
	"techzone/pkg/logger"
	"techzone/pkg/paycache"
)

// SetupPayCache 初始化支付缓存
// 默认走 Redis 缓存库，多实例部署共享会话；
// memory 驱动只适合单实例和本地调试。
func SetupPayCache() paycache.Store {
	driver := config.GetString("cache.driver")
	switch driver {
	case "memory":
		store := paycache.NewMemoryStore()
		store.StartSweeper()
		logger.InfoString("PayCache", "Setup", "使用内存支付缓存")
		return store
	default:
		logger.InfoString("PayCache", "Setup", "使用 Redis 支付缓存")
		return paycache.NewRedisStore()
	}
}
