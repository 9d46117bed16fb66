package config

import (
	"techzone/pkg/config"
)

func init() {
	config.Add("redis", func() map[string]interface{} {
		return map[string]interface{}{
			"host":     config.Env("REDIS_HOST", "127.0.0.1"),
			"port":     config.Env("REDIS_PORT", "6379"),
			"username": config.Env("REDIS_USERNAME", ""),
			"password": config.Env("REDIS_PASSWORD", ""),

			// 业务类存储使用 1 号库（限流、实时通知频道、最近完成订单）
			"database": config.Env("REDIS_MAIN_DB", 1),

			// 支付缓存专用 2 号库
			"cache_database": config.Env("REDIS_CACHE_DB", 2),
		}
	})
}
