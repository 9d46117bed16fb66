package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// GenerateQrRequest 生成支付 QR 的请求
type GenerateQrRequest struct {
	Amount  int64  `json:"amount" valid:"required"`
	Gencode string `json:"gencode" valid:"required"`
}

// ValidateGenerateQr 校验生成 QR 请求
func ValidateGenerateQr(c *gin.Context) (*GenerateQrRequest, error) {
	rules := govalidator.MapData{
		"amount":  []string{"required"},
		"gencode": []string{"required", "min:1"},
	}
	messages := govalidator.MapData{
		"amount": []string{
			"required:金额不能为空",
		},
		"gencode": []string{
			"required:交易码不能为空",
			"min:交易码不能为空字符串",
		},
	}

	req, err := ValidateRequest[GenerateQrRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}

	// 金额必须为正数，govalidator 不覆盖
	if req.Amount <= 0 {
		return nil, fmt.Errorf("金额必须大于 0")
	}
	return &req, nil
}

// CreatePaymentRequest 创建支付的请求
type CreatePaymentRequest struct {
	OrderID   uint64 `json:"order_id" valid:"required"`
	Provider  string `json:"provider" valid:"required"`
	ReturnURL string `json:"return_url"`
}

// ValidateCreatePayment 校验创建支付请求
func ValidateCreatePayment(c *gin.Context) (*CreatePaymentRequest, error) {
	rules := govalidator.MapData{
		"order_id": []string{"required"},
		"provider": []string{"required", "in:vietqr,wechat,alipay"},
	}
	messages := govalidator.MapData{
		"order_id": []string{
			"required:订单号不能为空",
		},
		"provider": []string{
			"required:支付渠道不能为空",
			"in:支付渠道必须是 vietqr、wechat 或 alipay",
		},
	}

	req, err := ValidateRequest[CreatePaymentRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// TransactionHookRequest SePay webhook 的到账通知
// 字段命名与 SePay 文档一致，保持 camelCase
type TransactionHookRequest struct {
	Gateway         string `json:"gateway"`
	TransactionDate string `json:"transactionDate"`
	AccountNumber   string `json:"accountNumber"`
	Code            string `json:"code"`
	Content         string `json:"content"`
	TransferType    string `json:"transferType" valid:"required"`
	TransferAmount  int64  `json:"transferAmount" valid:"required"`
	Accumulated     int64  `json:"accumulated"`
	SubAccount      string `json:"subAccount"`
	ReferenceCode   string `json:"referenceCode"`
	Description     string `json:"description"`
}

// ValidateTransactionHook 校验 webhook 请求
func ValidateTransactionHook(c *gin.Context) (*TransactionHookRequest, error) {
	rules := govalidator.MapData{
		"transferType":   []string{"required", "in:in,out"},
		"transferAmount": []string{"required"},
	}
	messages := govalidator.MapData{
		"transferType": []string{
			"required:转账方向不能为空",
			"in:转账方向必须是 in 或 out",
		},
		"transferAmount": []string{
			"required:转账金额不能为空",
		},
	}

	req, err := ValidateRequest[TransactionHookRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
