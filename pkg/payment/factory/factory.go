package factory

import (
	"fmt"

	"techzone/config"
	"techzone/pkg/payment/alipay"
	"techzone/pkg/payment/types"
	"techzone/pkg/payment/vietqr"
	"techzone/pkg/payment/wechat"
)

// NewPaymentService 创建支付服务
func NewPaymentService(provider types.Provider, repo types.Repository, cfg interface{}) (types.Service, error) {
	switch provider {
	case types.ProviderVietQR:
		scfg, ok := cfg.(config.SepayConfig)
		if !ok {
			return nil, fmt.Errorf("invalid sepay config type")
		}
		return vietqr.NewVietQRService(scfg, repo)

	case types.ProviderWechat:
		wcfg, ok := cfg.(config.WechatConfig)
		if !ok {
			return nil, fmt.Errorf("invalid wechat config type")
		}
		return wechat.NewWechatPayService(wcfg, repo)

	case types.ProviderAlipay:
		acfg, ok := cfg.(config.AlipayConfig)
		if !ok {
			return nil, fmt.Errorf("invalid alipay config type")
		}
		return alipay.NewAlipayService(acfg, repo)

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}
