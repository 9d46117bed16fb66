// Package qr 对接后端 GenerateQr 接口并归一化其响应
//
// 后端返回的 QR 形态相当随意：裸字符串（data URL / http URL / base64）、
// 图片字节流、带 qrCode / imageUrl / url / data / qrCodeUrl / base64 / image
// 任一字段的对象、单键包装对象，以及 Swagger 风格的
// { success, message, data } 信封。所有嗅探逻辑集中在本文件的归一化
// 函数里，调用方只拿到带标签的结果，不做任何形态判断。
package qr

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// ResultKind 归一化结果的类型标签
type ResultKind string

const (
	KindURL     ResultKind = "url"     // http(s) 地址，直接用作 img src
	KindDataURL ResultKind = "dataUrl" // data:image/... 内联图片
	KindError   ResultKind = "error"   // 无法识别
)

// Result 归一化后的 QR 结果
type Result struct {
	Kind  ResultKind
	Value string
}

// dataURLPrefix 裸 base64 补全时使用的前缀，后端的 QR 图片固定是 PNG
const dataURLPrefix = "data:image/png;base64,"

// 对象响应里按优先级尝试的字段名
var knownFields = []string{"qrCode", "imageUrl", "url", "data", "qrCodeUrl", "base64", "image"}

// NormalizeValue 归一化一个字符串形态的 QR 值
// 已带 data:image/ 或 http(s):// 前缀的原样使用，其余按裸 base64 处理
func NormalizeValue(value string) Result {
	value = strings.TrimSpace(value)
	if value == "" {
		return Result{Kind: KindError}
	}
	if strings.HasPrefix(value, "data:image/") {
		return Result{Kind: KindDataURL, Value: value}
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return Result{Kind: KindURL, Value: value}
	}
	return Result{Kind: KindDataURL, Value: dataURLPrefix + value}
}

// NormalizeImage 将图片字节流归一化为内联 data URL
func NormalizeImage(contentType string, body []byte) Result {
	if len(body) == 0 {
		return Result{Kind: KindError}
	}
	mime := contentType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return Result{
		Kind:  KindDataURL,
		Value: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body),
	}
}

// NormalizeResponse 归一化一段 JSON / 文本响应体
func NormalizeResponse(body []byte) Result {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return Result{Kind: KindError}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		// 不是 JSON：按裸字符串处理（base64 或 URL）
		return NormalizeValue(strings.Trim(trimmed, `"`))
	}
	return normalizeAny(parsed, 0)
}

// normalizeAny 递归归一化任意解析结果
// depth 限制单键包装的展开层数，防止畸形响应导致无限递归
func normalizeAny(value interface{}, depth int) Result {
	if depth > 3 {
		return Result{Kind: KindError}
	}

	switch v := value.(type) {
	case string:
		return NormalizeValue(v)

	case map[string]interface{}:
		// Swagger 信封：{ success, message, data, errors }
		if success, ok := v["success"]; ok {
			if b, isBool := success.(bool); isBool && !b {
				return Result{Kind: KindError}
			}
			if data, ok := v["data"]; ok && data != nil {
				return normalizeAny(data, depth+1)
			}
		}

		// 已知字段名按优先级尝试
		for _, field := range knownFields {
			if raw, ok := v[field]; ok && raw != nil {
				if r := normalizeAny(raw, depth+1); r.Kind != KindError {
					return r
				}
			}
		}

		// 兜底：单键对象展开其值
		if len(v) == 1 {
			for _, raw := range v {
				return normalizeAny(raw, depth+1)
			}
		}
		return Result{Kind: KindError}

	default:
		return Result{Kind: KindError}
	}
}
