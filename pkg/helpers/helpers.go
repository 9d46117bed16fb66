// Package helpers 存放辅助方法
package helpers

import (
	"fmt"
	"time"
)

// MicrosecondsStr 将 time.Duration 类型（纳秒级）输出为小数点后 3 位的毫秒
func MicrosecondsStr(elapsed time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/1e6)
}
