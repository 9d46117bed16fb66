package qr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"techzone/pkg/logger"
)

// ErrInvalidAmount 金额必须为大于 0 的有限数值，属于调用方 bug
var ErrInvalidAmount = errors.New("qr: amount must be greater than 0")

// ErrInvalidGencode 交易码不能为空，属于调用方 bug
var ErrInvalidGencode = errors.New("qr: gencode must not be empty")

// ErrUnrecognizedResponse 后端响应无法归一化为 QR 结果
var ErrUnrecognizedResponse = errors.New("qr: unrecognized response shape")

// FallbackService 兜底的公共 QR 渲染服务
// QR 接口全部失败时用它渲染一个降级的替代图，仅保证可扫描，
// 不保证银行侧对账一致
const FallbackService = "https://api.qrserver.com/v1/create-qr-code/"

// Client QR 生成客户端
type Client struct {
	http      *resty.Client
	endpoints []string
}

// Config 客户端配置
type Config struct {
	BaseURL   string
	Endpoints []string // 按顺序尝试的接口路径
	Timeout   time.Duration
	Retries   int
}

// NewClient 创建 QR 生成客户端
func NewClient(cfg Config) *Client {
	if len(cfg.Endpoints) == 0 {
		// 与后端 Swagger 一致：先 GenerateQr，失败再试 Payment/GenerateQr
		cfg.Endpoints = []string{"GenerateQr", "Payment/GenerateQr"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		http:      http,
		endpoints: cfg.Endpoints,
	}
}

// GenerateQr 请求支付 QR，返回归一化后的结果
//
// 前置条件在发起网络请求前校验：amount > 0、gencode 非空。
// 违反前置条件直接报错，不属于可恢复的运行时状况。
func (c *Client) GenerateQr(ctx context.Context, amount int64, gencode string) (Result, error) {
	if amount <= 0 {
		return Result{Kind: KindError}, ErrInvalidAmount
	}
	gencode = strings.TrimSpace(gencode)
	if gencode == "" {
		return Result{Kind: KindError}, ErrInvalidGencode
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		result, err := c.fetch(ctx, endpoint, amount, gencode)
		if err == nil {
			return result, nil
		}
		lastErr = err
		logger.WarnString("QR", "Generate", fmt.Sprintf("接口 %s 失败：%v，尝试下一个", endpoint, err))
	}
	return Result{Kind: KindError}, lastErr
}

// fetch 调用单个接口并归一化响应
func (c *Client) fetch(ctx context.Context, endpoint string, amount int64, gencode string) (Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"amount":  strconv.FormatInt(amount, 10),
			"gencode": gencode,
		}).
		Get("/" + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return Result{Kind: KindError}, fmt.Errorf("qr request error: %w", err)
	}

	// 图片响应直接转内联 data URL
	contentType := resp.Header().Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		result := NormalizeImage(contentType, resp.Body())
		if result.Kind == KindError {
			return result, ErrUnrecognizedResponse
		}
		return result, nil
	}

	if resp.IsError() {
		return Result{Kind: KindError}, fmt.Errorf("qr request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	result := NormalizeResponse(resp.Body())
	if result.Kind == KindError {
		return result, ErrUnrecognizedResponse
	}
	return result, nil
}

// FallbackURL 构造降级兜底的 QR 渲染地址
// 文本载荷与原有约定保持一致：VietQR|{订单号}|{金额}|TechZone
func FallbackURL(orderID string, amount int64) string {
	payload := fmt.Sprintf("VietQR|%s|%d|TechZone", orderID, amount)
	query := url.Values{}
	query.Set("size", "300x300")
	query.Set("data", payload)
	return FallbackService + "?" + query.Encode()
}
