/*
	Package payment 支付能力的公共入口

	具体渠道实现放在 vietqr / wechat / alipay 子包里，
	由 factory 按配置选择。
*/
package payment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// GenerateGencode 生成交易码
//
// 格式：ORDER_{订单号}_{yyyyMMddHHmmss}_{8位随机hex}。
// 交易码会出现在转账备注和实时频道名里，保持可读。
func GenerateGencode(orderID string) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("ORDER_%s_%s_%s",
		orderID,
		time.Now().Format("20060102150405"),
		hex.EncodeToString(suffix))
}

// gencodePattern 从转账备注里提取交易码
// 银行会在备注前后拼接自己的文案，只认中间的 ORDER_ 串
var gencodePattern = regexp.MustCompile(`ORDER_[A-Za-z0-9]+_[0-9]{14}_[0-9a-f]{8}`)

// ExtractGencode 从银行转账备注中提取交易码，找不到返回空串
func ExtractGencode(content string) string {
	return gencodePattern.FindString(content)
}
