package bootstrap

import (
	"techzone/pkg/config"
	"techzone/pkg/logger"
)

// SetupLogger 初始化 Logger，配置项见 config/log.go
func SetupLogger() {
	logger.InitLogger(
		config.GetString("log.filename"),
		config.GetInt("log.max_size"),   // 单位 MB
		config.GetInt("log.max_backup"),
		config.GetInt("log.max_age"),    // 保存天数
		config.GetBool("log.compress"),
		config.GetString("log.type"),    // daily 或 single
		config.GetString("log.level"),
	)
}
