package bootstrap

import (
	"context"

	"techzone/pkg/logger"
	"techzone/pkg/realtime"
	"techzone/pkg/redis"
)

// SetupRealtime 初始化实时通知中枢
// 依赖 Redis 主库，必须在 SetupRedis 之后调用
func SetupRealtime() {
	hub := realtime.NewHub(redis.GetRedis(redis.MainDB))
	if err := hub.Connect(context.Background()); err != nil {
		logger.ErrorString("Realtime", "Setup", "通知频道连接失败："+err.Error())
	}
	realtime.Default = hub
}
