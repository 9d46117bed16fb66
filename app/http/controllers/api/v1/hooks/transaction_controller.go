package hooks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	paymentmodel "techzone/app/models/payment"
	"techzone/app/repositories"
	"techzone/app/requests"
	"techzone/pkg/app"
	"techzone/pkg/logger"
	"techzone/pkg/payment"
	"techzone/pkg/realtime"
	"techzone/pkg/response"
)

// TransactionController SePay webhook 控制器
//
// 到账流水一律先落库，再尝试按转账备注里的交易码对账。
// 对不上的流水留在表里人工处理，webhook 本身返回成功，
// 避免 SePay 反复重推。
type TransactionController struct {
	payments *repositories.PaymentRepository
	orders   *repositories.OrderRepository
	hub      *realtime.Hub
}

// NewTransactionController 创建 webhook 控制器
func NewTransactionController() *TransactionController {
	return &TransactionController{
		payments: repositories.NewPaymentRepository(),
		orders:   repositories.NewOrderRepository(),
		hub:      realtime.Default,
	}
}

// Store 处理到账通知
//
// POST /hooks/transaction
func (tc *TransactionController) Store(c *gin.Context) {
	request, err := requests.ValidateTransactionHook(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	// 流水先落库
	record := &paymentmodel.BankTransaction{
		Gateway:        request.Gateway,
		AccountNumber:  request.AccountNumber,
		Code:           request.Code,
		Content:        request.Content,
		TransferType:   request.TransferType,
		TransferAmount: request.TransferAmount,
		Accumulated:    request.Accumulated,
		SubAccount:     request.SubAccount,
		ReferenceCode:  request.ReferenceCode,
		Description:    request.Description,
	}
	// 银行侧时间不带时区，按配置的本地时区解析
	if parsed, err := time.ParseInLocation("2006-01-02 15:04:05", request.TransactionDate, app.Location()); err == nil {
		record.TransactionDate = parsed
	}
	if err := tc.payments.CreateBankTransaction(c.Request.Context(), record); err != nil {
		logger.ErrorString("Hooks", "Transaction", "流水落库失败："+err.Error())
		response.Abort500(c, "流水保存失败")
		return
	}

	// 只对账转入
	if request.TransferType != "in" {
		response.Data(c, gin.H{"success": true})
		return
	}

	gencode := payment.ExtractGencode(request.Code)
	if gencode == "" {
		gencode = payment.ExtractGencode(request.Content)
	}
	if gencode == "" {
		logger.WarnString("Hooks", "Transaction",
			fmt.Sprintf("流水 %s 备注里没有交易码，等待人工对账", request.ReferenceCode))
		response.Data(c, gin.H{"success": true})
		return
	}

	tc.settle(c, gencode, request)
	response.Data(c, gin.H{"success": true})
}

// settle 按交易码对账：更新支付记录、订单状态，广播到账事件
func (tc *TransactionController) settle(c *gin.Context, gencode string, request *requests.TransactionHookRequest) {
	ctx := c.Request.Context()
	amount := int64(0)

	if record, err := tc.payments.GetByGencode(ctx, gencode); err == nil && record.Status == "pending" {
		if request.TransferAmount < record.Amount {
			logger.WarnString("Hooks", "Transaction",
				fmt.Sprintf("交易 %s 金额不足：到账 %d，应付 %d", gencode, request.TransferAmount, record.Amount))
			return
		}
		now := time.Now()
		record.Status = "paid"
		record.TransactionID = request.ReferenceCode
		record.PayAt = &now
		if err := tc.payments.Update(ctx, record); err != nil {
			logger.ErrorString("Hooks", "Transaction", "支付记录更新失败："+err.Error())
		}
		amount = record.Amount
	}

	var orderID string
	if order, err := tc.orders.GetPendingByGencode(ctx, gencode); err == nil {
		if err := tc.orders.MarkPaid(ctx, order.ID); err != nil {
			logger.ErrorString("Hooks", "Transaction", "订单状态更新失败："+err.Error())
		}
		orderID = strconv.FormatUint(order.ID, 10)
		if amount == 0 {
			amount = order.TotalAmount
		}
	}

	event := realtime.PaymentEvent{
		Gencode:   gencode,
		OrderID:   orderID,
		Amount:    amount,
		Message:   "Thanh toán thành công",
		Timestamp: time.Now(),
	}
	if err := tc.hub.Publish(ctx, gencode, event); err != nil {
		logger.ErrorString("Hooks", "Transaction", "到账事件广播失败："+err.Error())
	}
}
