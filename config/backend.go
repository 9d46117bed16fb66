package config

import "techzone/pkg/config"

func init() {
	config.Add("backend", func() map[string]interface{} {
		return map[string]interface{}{
			// QR 生成接口的基础地址
			"qr_base_url": config.Env("BACKEND_QR_URL", "http://127.0.0.1:5000/api"),

			// 订单服务的基础地址
			"orders_base_url": config.Env("BACKEND_ORDERS_URL", "http://127.0.0.1:5000/api"),

			"timeout":     config.Env("BACKEND_TIMEOUT", 15),
			"max_retries": config.Env("BACKEND_MAX_RETRIES", 2),
		}
	})
}
