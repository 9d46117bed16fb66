package config

import "techzone/pkg/config"

func init() {
	config.Add("hooks", func() map[string]interface{} {
		return map[string]interface{}{
			// SePay webhook 的 Apikey 凭证
			"api_key": config.Env("HOOKS_API_KEY", ""),

			// webhook 限流：每分钟每IP
			"rate_limit": config.Env("HOOKS_RATE_LIMIT", "300"),
		}
	})
}
