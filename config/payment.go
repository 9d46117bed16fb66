package config

import "techzone/pkg/config"

func init() {
	config.Add("payment", func() map[string]interface{} {
		return map[string]interface{}{
			// 默认支付渠道
			"provider": config.Env("PAYMENT_PROVIDER", "vietqr"),

			// SePay 收款账户（越南银行转账）
			"sepay": map[string]interface{}{
				"account": config.Env("SEPAY_ACCOUNT", ""),
				"bank":    config.Env("SEPAY_BANK", ""),
			},

			"wechat": map[string]interface{}{
				"app_id":      config.Env("WECHAT_APP_ID", ""),
				"mch_id":      config.Env("WECHAT_MCH_ID", ""),
				"serial_no":   config.Env("WECHAT_SERIAL_NO", ""),
				"private_key": config.Env("WECHAT_PRIVATE_KEY", ""),
				"apiv3_key":   config.Env("WECHAT_APIV3_KEY", ""),
				"notify_url":  config.Env("WECHAT_NOTIFY_URL", ""),
				"return_url":  config.Env("WECHAT_RETURN_URL", ""),
			},

			"alipay": map[string]interface{}{
				"app_id":        config.Env("ALIPAY_APP_ID", ""),
				"private_key":   config.Env("ALIPAY_PRIVATE_KEY", ""),
				"public_key":    config.Env("ALIPAY_PUBLIC_KEY", ""),
				"notify_url":    config.Env("ALIPAY_NOTIFY_URL", ""),
				"return_url":    config.Env("ALIPAY_RETURN_URL", ""),
				"is_production": config.Env("ALIPAY_IS_PRODUCTION", false),
			},
		}
	})
}

// PaymentConfig 支付配置
type PaymentConfig struct {
	Sepay  SepayConfig
	Wechat WechatConfig
	Alipay AlipayConfig
}

// SepayConfig SePay 收款配置
type SepayConfig struct {
	Account string
	Bank    string
}

// WechatConfig 微信支付配置
type WechatConfig struct {
	AppID      string
	MchID      string
	SerialNo   string
	PrivateKey string
	APIv3Key   string
	NotifyURL  string
	ReturnURL  string
}

// AlipayConfig 支付宝配置
type AlipayConfig struct {
	AppID        string
	PrivateKey   string
	PublicKey    string
	NotifyURL    string
	ReturnURL    string
	IsProduction bool
}

// GetSepayConfig 从配置中心读取 SePay 配置
func GetSepayConfig() SepayConfig {
	return SepayConfig{
		Account: config.GetString("payment.sepay.account"),
		Bank:    config.GetString("payment.sepay.bank"),
	}
}

// GetWechatConfig 从配置中心读取微信支付配置
func GetWechatConfig() WechatConfig {
	return WechatConfig{
		AppID:      config.GetString("payment.wechat.app_id"),
		MchID:      config.GetString("payment.wechat.mch_id"),
		SerialNo:   config.GetString("payment.wechat.serial_no"),
		PrivateKey: config.GetString("payment.wechat.private_key"),
		APIv3Key:   config.GetString("payment.wechat.apiv3_key"),
		NotifyURL:  config.GetString("payment.wechat.notify_url"),
		ReturnURL:  config.GetString("payment.wechat.return_url"),
	}
}

// GetAlipayConfig 从配置中心读取支付宝配置
func GetAlipayConfig() AlipayConfig {
	return AlipayConfig{
		AppID:        config.GetString("payment.alipay.app_id"),
		PrivateKey:   config.GetString("payment.alipay.private_key"),
		PublicKey:    config.GetString("payment.alipay.public_key"),
		NotifyURL:    config.GetString("payment.alipay.notify_url"),
		ReturnURL:    config.GetString("payment.alipay.return_url"),
		IsProduction: config.GetBool("payment.alipay.is_production"),
	}
}
