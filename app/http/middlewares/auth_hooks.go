package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"techzone/pkg/config"
	"techzone/pkg/logger"
	"techzone/pkg/response"
)

// AuthHookApikey 校验 webhook 的 Apikey 凭证
// SePay 的请求头格式：Authorization: Apikey {key}
func AuthHookApikey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.GetString("hooks.api_key")
		if expected == "" {
			logger.WarnString("Hooks", "Auth", "HOOKS_API_KEY 未配置，拒绝所有 webhook 请求")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "webhook 未启用",
			})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Apikey ") ||
			strings.TrimSpace(strings.TrimPrefix(header, "Apikey ")) != expected {
			response.Abort401(c)
			return
		}

		c.Next()
	}
}
