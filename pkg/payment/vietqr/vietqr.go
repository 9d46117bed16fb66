package vietqr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"techzone/app/models/payment"
	"techzone/config"
	paymentpkg "techzone/pkg/payment"
	"techzone/pkg/payment/types"
)

// QrBase SePay 的 QR 渲染地址
const QrBase = "https://qr.sepay.vn/img"

// SessionTTL 转账会话有效期，超过后不再认这笔转账
const SessionTTL = 30 * time.Minute

// VietQRService 越南银行转账（VietQR）支付服务
//
// 不同于微信/支付宝，这个渠道没有预下单接口：生成一张带转账
// 备注（gencode）的 QR 图，等 SePay webhook 回报到账后对账。
type VietQRService struct {
	account    string
	bank       string
	repository types.Repository
}

// NewVietQRService 创建 VietQR 支付服务
func NewVietQRService(config config.SepayConfig, repo types.Repository) (*VietQRService, error) {
	if config.Account == "" || config.Bank == "" {
		return nil, fmt.Errorf("sepay account and bank are required")
	}
	return &VietQRService{
		account:    config.Account,
		bank:       config.Bank,
		repository: repo,
	}, nil
}

// CreatePayment 创建支付
//
// 生成 gencode 作为转账备注，写入待支付记录，返回 QR 地址。
func (s *VietQRService) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	gencode := req.Gencode
	if gencode == "" {
		gencode = paymentpkg.GenerateGencode(strconv.FormatUint(req.OrderID, 10))
	}
	expireAt := time.Now().Add(SessionTTL)
	qrURL := s.qrURL(req.Amount, gencode)

	p := &payment.Payment{
		OrderNo:  gencode,
		UserID:   req.UserID,
		OrderID:  req.OrderID,
		Provider: string(types.ProviderVietQR),
		Amount:   req.Amount,
		Status:   string(types.StatusPending),
		Gencode:  gencode,
		QrURL:    qrURL,
		ExpireAt: &expireAt,
	}
	if err := s.repository.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment record error: %w", err)
	}

	return &types.Result{
		OrderNo:  gencode,
		Gencode:  gencode,
		QrURL:    qrURL,
		ExpireAt: expireAt,
	}, nil
}

// qrURL 拼 SePay 渲染地址，转账备注放 des 参数
func (s *VietQRService) qrURL(amount int64, gencode string) string {
	query := url.Values{}
	query.Set("acc", s.account)
	query.Set("bank", s.bank)
	query.Set("amount", strconv.FormatInt(amount, 10))
	query.Set("des", gencode)
	return QrBase + "?" + query.Encode()
}

// QueryPayment 查询支付记录
func (s *VietQRService) QueryPayment(ctx context.Context, orderNo string) (*payment.Payment, error) {
	return s.repository.GetByOrderNo(ctx, orderNo)
}

// HandleNotify 处理 SePay webhook 的到账通知
//
// 按转账备注（gencode）找到待支付记录，金额足够则标记已支付。
func (s *VietQRService) HandleNotify(ctx context.Context, data []byte) error {
	var notify struct {
		Content        string `json:"content"`
		Code           string `json:"code"`
		TransferAmount int64  `json:"transferAmount"`
		ReferenceCode  string `json:"referenceCode"`
	}
	if err := json.Unmarshal(data, &notify); err != nil {
		return fmt.Errorf("decode sepay notify error: %w", err)
	}

	gencode := notify.Code
	if gencode == "" {
		gencode = notify.Content
	}
	record, err := s.repository.GetByOrderNo(ctx, gencode)
	if err != nil {
		return fmt.Errorf("payment record not found for %q: %w", gencode, err)
	}
	if record.Status != string(types.StatusPending) {
		return nil
	}
	if notify.TransferAmount < record.Amount {
		return fmt.Errorf("transfer amount %d less than expected %d", notify.TransferAmount, record.Amount)
	}

	now := time.Now()
	record.Status = string(types.StatusPaid)
	record.TransactionID = notify.ReferenceCode
	record.PayAt = &now
	return s.repository.Update(ctx, record)
}

// CancelPayment 取消待支付记录
func (s *VietQRService) CancelPayment(ctx context.Context, orderNo string) error {
	record, err := s.repository.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if record.Status != string(types.StatusPending) {
		return fmt.Errorf("payment %s is not pending", orderNo)
	}
	record.Status = string(types.StatusCancelled)
	return s.repository.Update(ctx, record)
}

// RefundPayment 银行转账渠道没有退款接口，只能线下处理
func (s *VietQRService) RefundPayment(ctx context.Context, orderNo string, amount int64, reason string) error {
	return fmt.Errorf("vietqr does not support refund, handle manually: %s", orderNo)
}
