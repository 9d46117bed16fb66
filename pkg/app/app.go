// Package app 提供应用程序相关的辅助函数
package app

import (
	"time"

	"techzone/pkg/config"
)

// IsLocal 判断当前是否运行在本地环境
func IsLocal() bool {
	return config.Get("app.env") == "local"
}

// IsProduction 判断当前是否运行在生产环境
func IsProduction() bool {
	return config.Get("app.env") == "production"
}

// IsTesting 判断当前是否运行在测试环境
func IsTesting() bool {
	return config.Get("app.env") == "testing"
}

// Location 返回配置的时区，加载失败时退回 UTC
// 银行回调里的交易时间是越南本地时间，解析时需要带上时区
func Location() *time.Location {
	loc, err := time.LoadLocation(config.GetString("app.timezone"))
	if err != nil {
		return time.UTC
	}
	return loc
}

// TimenowInTimezone 获取配置时区的当前时间
func TimenowInTimezone() time.Time {
	return time.Now().In(Location())
}
