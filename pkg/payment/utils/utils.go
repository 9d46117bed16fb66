// Package utils 支付模块共用的辅助函数
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateOrderNo 生成商户侧订单号，时间戳加 4 字节随机后缀
func GenerateOrderNo() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%s%s", time.Now().Format("20060102150405"), hex.EncodeToString(b))
}
