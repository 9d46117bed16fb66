/*
	Package orders 订单服务客户端

	对接外部订单 API。历史接口字段命名不统一（snake_case、
	camelCase 混用），也有裸对象和 {order, order_details}
	两种包装，这里统一归一化成 Order。
*/
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cast"
)

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("orders: order not found")

// Order 归一化后的订单视图
type Order struct {
	ID           string `json:"order_id"`
	Status       string `json:"status"`
	TotalAmount  int64  `json:"total_amount"`
	Types        string `json:"types"`
	TypesDisplay string `json:"types_display"`
	QrURL        string `json:"qr_url"`
	Gencode      string `json:"gencode"`
	CustomerName string `json:"customer_name"`
}

// IsPending 订单是否处于待支付状态
func (o Order) IsPending() bool {
	return strings.EqualFold(o.Status, "pending")
}

// IsQrEligible 转账和 ATM 类型的订单才走 QR 支付
func (o Order) IsQrEligible() bool {
	return strings.EqualFold(o.Types, "transfer") || strings.EqualFold(o.Types, "atm")
}

// Client 订单服务客户端
type Client struct {
	http *resty.Client
}

// Config 客户端配置
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// NewClient 创建订单服务客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{http: http}
}

// Get 查询订单并归一化
func (c *Client) Get(ctx context.Context, orderID string) (Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return Order{}, errors.New("orders: order id must not be empty")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/orders/" + orderID)
	if err != nil {
		return Order{}, fmt.Errorf("orders request error: %w", err)
	}
	if resp.StatusCode() == 404 {
		return Order{}, ErrOrderNotFound
	}
	if resp.IsError() {
		return Order{}, fmt.Errorf("orders request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return NormalizeOrder(resp.Body())
}

// UpdateStatus 更新订单状态（超时取消时回写 cancelled）
func (c *Client) UpdateStatus(ctx context.Context, orderID, status string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		Put("/orders/" + orderID + "/status")
	if err != nil {
		return fmt.Errorf("orders update error: %w", err)
	}
	if resp.StatusCode() == 404 {
		return ErrOrderNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("orders update failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// NormalizeOrder 把接口响应归一化为 Order
//
// 支持两种包装：裸订单对象，或 {order: {...}, order_details: [...]}。
// 字段按别名列表逐个取第一个非空值。
func NormalizeOrder(body []byte) (Order, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Order{}, fmt.Errorf("orders: decode response: %w", err)
	}

	// Swagger 包装 {success, message, data}
	if data, ok := raw["data"].(map[string]interface{}); ok {
		raw = data
	}
	// 包装形态 {order, order_details}
	if inner, ok := raw["order"].(map[string]interface{}); ok {
		raw = inner
	}

	order := Order{
		ID:           pick(raw, "order_id", "orderId", "id"),
		Status:       pick(raw, "status", "order_status", "orderStatus"),
		Types:        pick(raw, "types", "paymentType", "payment_type"),
		TypesDisplay: pick(raw, "types_display", "typesDisplay"),
		QrURL:        pick(raw, "qrUrl", "qrCodeUrl", "qr_code_url", "qr_url"),
		Gencode:      pick(raw, "gencode", "genCode", "gen_code"),
		CustomerName: pick(raw, "customer_name", "customerName", "name"),
	}
	order.TotalAmount = pickAmount(raw, "total_amount", "totalAmount", "total")

	if order.ID == "" {
		return Order{}, errors.New("orders: response has no order id")
	}
	return order, nil
}

// pick 按别名顺序取第一个非空字段，统一转字符串
func pick(raw map[string]interface{}, aliases ...string) string {
	for _, key := range aliases {
		if value, ok := raw[key]; ok && value != nil {
			s := strings.TrimSpace(cast.ToString(value))
			if s != "" {
				return s
			}
		}
	}
	return ""
}

// pickAmount 金额字段可能是数字也可能是字符串
func pickAmount(raw map[string]interface{}, aliases ...string) int64 {
	for _, key := range aliases {
		if value, ok := raw[key]; ok && value != nil {
			if amount := cast.ToInt64(value); amount != 0 {
				return amount
			}
		}
	}
	return 0
}
