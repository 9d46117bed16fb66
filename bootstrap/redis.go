package bootstrap

import (
	"fmt"
	"techzone/pkg/config"
	"techzone/pkg/logger"
	"techzone/pkg/redis"
)

// SetupRedis 初始化 Redis
func SetupRedis() {
	// 初始化 Redis 连接
	redis.InitRedis(
		fmt.Sprintf("%v:%v", config.GetString("redis.host"), config.GetString("redis.port")),
		config.GetString("redis.username"),
		config.GetString("redis.password"),
		config.GetInt("redis.database"),
		config.GetInt("redis.cache_database"),
	)

	// 实时通知和支付缓存都依赖 Redis，启动时连不上直接失败
	if err := redis.Redis.Ping(); err != nil {
		logger.ErrorString("Redis", "连接", err.Error())
		panic(err)
	}
}
