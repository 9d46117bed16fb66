package config

import "techzone/pkg/config"

func init() {
	config.Add("cache", func() map[string]interface{} {
		return map[string]interface{}{
			// 支付缓存驱动，可选：redis, memory
			"driver": config.Env("CACHE_DRIVER", "redis"),

			// 过期会话回收周期，单位：秒
			"expiry_interval": config.Env("CACHE_EXPIRY_INTERVAL", 60),
		}
	})
}
