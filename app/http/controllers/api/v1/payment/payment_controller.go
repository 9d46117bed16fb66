package payment

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"techzone/app/repositories"
	"techzone/app/requests"
	"techzone/config"
	"techzone/pkg/payment/factory"
	"techzone/pkg/payment/types"
	"techzone/pkg/payment/vietqr"
	"techzone/pkg/response"
)

type PaymentController struct {
	repository *repositories.PaymentRepository
}

// NewPaymentController 创建支付控制器
func NewPaymentController() *PaymentController {
	return &PaymentController{
		repository: repositories.NewPaymentRepository(),
	}
}

// GenerateQr 生成支付 QR
//
// POST /v1/payments/generate-qr
// 按金额和交易码直接拼 SePay 渲染地址，不落支付记录，
// 记录由 CreatePayment 或确认流程负责。
func (pc *PaymentController) GenerateQr(c *gin.Context) {
	request, err := requests.ValidateGenerateQr(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	sepay := config.GetSepayConfig()
	if sepay.Account == "" || sepay.Bank == "" {
		response.Abort500(c, "支付收款账户未配置")
		return
	}

	query := url.Values{}
	query.Set("acc", sepay.Account)
	query.Set("bank", sepay.Bank)
	query.Set("amount", strconv.FormatInt(request.Amount, 10))
	query.Set("des", request.Gencode)

	response.Data(c, gin.H{
		"qrUrl": vietqr.QrBase + "?" + query.Encode(),
	})
}

// CreatePayment 创建支付
//
// POST /v1/payments
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	request, err := requests.ValidateCreatePayment(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	provider := types.Provider(request.Provider)
	service, err := factory.NewPaymentService(provider, pc.repository, providerConfig(provider))
	if err != nil {
		response.Abort500(c, "支付渠道初始化失败")
		return
	}

	orderRepo := repositories.NewOrderRepository()
	order, err := orderRepo.GetByID(c.Request.Context(), request.OrderID)
	if err != nil {
		response.Abort404(c, "订单不存在")
		return
	}
	if !order.IsPending() {
		response.Abort400(c, "订单不在待支付状态")
		return
	}

	payReq := &types.Request{
		UserID:    c.GetString("user_id"),
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		Provider:  provider,
		Gencode:   order.Gencode,
		ReturnURL: request.ReturnURL,
	}

	result, err := service.CreatePayment(c.Request.Context(), payReq)
	if err != nil {
		response.ServerError(c, err, "创建支付失败")
		return
	}

	response.Data(c, result)
}

// providerConfig 按渠道取配置
func providerConfig(provider types.Provider) interface{} {
	switch provider {
	case types.ProviderWechat:
		return config.GetWechatConfig()
	case types.ProviderAlipay:
		return config.GetAlipayConfig()
	default:
		return config.GetSepayConfig()
	}
}
