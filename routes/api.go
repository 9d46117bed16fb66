package routes

import (
	"techzone/app/http/controllers/api/v1/hooks"
	"techzone/app/http/controllers/api/v1/payment"
	"techzone/app/http/middlewares"

	"github.com/gin-gonic/gin"
)

// 路由限流配置
const (
	// 🌍 全局限流：每小时每IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 💳 发起支付/确认会话限流：每小时每IP 100 请求
	CreatePaymentLimit = "100-H"
	// 🔍 查询状态限流：每分钟每IP 300 请求
	QueryStatusLimit = "300-M"
	// 🪝 webhook 限流：每分钟每IP 300 请求
	HookLimit = "300-M"
)

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	// 💳 支付相关路由
	paymentRoutes := v1.Group("/payments")
	{
		pc := payment.NewPaymentController()
		cc := payment.NewConfirmationController()

		// 生成支付 QR
		// POST /v1/payments/generate-qr
		paymentRoutes.POST("/generate-qr",
			middlewares.LimitIP(CreatePaymentLimit),
			pc.GenerateQr,
		)

		// 创建支付
		// POST /v1/payments
		paymentRoutes.POST("",
			middlewares.LimitIP(CreatePaymentLimit),
			pc.CreatePayment,
		)

		// 最近一次完成支付的订单
		// GET /v1/payments/last-order
		paymentRoutes.GET("/last-order",
			middlewares.LimitIP(QueryStatusLimit),
			cc.LastOrder,
		)

		// 发起确认会话
		// POST /v1/payments/:order_id/confirmation
		paymentRoutes.POST("/:order_id/confirmation",
			middlewares.LimitIP(CreatePaymentLimit),
			cc.Store,
		)

		// 查询确认会话状态
		// GET /v1/payments/:order_id/confirmation
		paymentRoutes.GET("/:order_id/confirmation",
			middlewares.LimitIP(QueryStatusLimit),
			cc.Show,
		)

		// 取消确认会话
		// DELETE /v1/payments/:order_id/confirmation
		paymentRoutes.DELETE("/:order_id/confirmation",
			middlewares.LimitIP(QueryStatusLimit),
			cc.Destroy,
		)
	}

	// 🪝 SePay webhook，独立于 /v1，凭证放在 Authorization 头
	hookRoutes := r.Group("/hooks")
	hookRoutes.Use(
		middlewares.Recovery(),
		middlewares.LimitPerRoute(HookLimit),
		middlewares.AuthHookApikey(),
	)
	{
		tc := hooks.NewTransactionController()

		// 到账通知
		// POST /hooks/transaction
		hookRoutes.POST("/transaction", tc.Store)
	}
}
