package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeOrderFlat(t *testing.T) {
	body := `{"order_id":88,"status":"pending","total_amount":150000,"types":"Transfer","qrUrl":"https://x/qr.png","gencode":"gen-a"}`
	order, err := NormalizeOrder([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeOrder 失败: %v", err)
	}
	if order.ID != "88" || order.Status != "pending" || order.TotalAmount != 150000 {
		t.Errorf("归一化结果 = %+v", order)
	}
	if order.QrURL != "https://x/qr.png" || order.Gencode != "gen-a" {
		t.Errorf("QR/交易码字段 = %+v", order)
	}
}

func TestNormalizeOrderAliases(t *testing.T) {
	// camelCase 与 snake_case 混用的历史接口
	body := `{"orderId":"99","order_status":"Pending","totalAmount":"200000","payment_type":"atm","qr_code_url":"https://x/q.png","genCode":"gen-b"}`
	order, err := NormalizeOrder([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeOrder 失败: %v", err)
	}
	if order.ID != "99" {
		t.Errorf("ID = %q", order.ID)
	}
	if order.TotalAmount != 200000 {
		t.Errorf("金额字符串应当转数值，得到 %d", order.TotalAmount)
	}
	if !order.IsPending() {
		t.Error("状态大小写不敏感，Pending 应当算待支付")
	}
	if !order.IsQrEligible() {
		t.Error("atm 类型应当允许 QR 支付")
	}
	if order.QrURL != "https://x/q.png" || order.Gencode != "gen-b" {
		t.Errorf("别名字段 = %+v", order)
	}
}

func TestNormalizeOrderWrapped(t *testing.T) {
	// {order, order_details} 包装形态
	body := `{"order":{"id":7,"status":"pending","total":50000,"types":"COD"},"order_details":[{"product_id":1}]}`
	order, err := NormalizeOrder([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeOrder 失败: %v", err)
	}
	if order.ID != "7" || order.TotalAmount != 50000 {
		t.Errorf("包装形态归一化结果 = %+v", order)
	}
	if order.IsQrEligible() {
		t.Error("COD 订单不应允许 QR 支付")
	}
}

func TestNormalizeOrderEnvelope(t *testing.T) {
	// Swagger 信封再套包装
	body := `{"success":true,"data":{"order":{"order_id":5,"status":"paid","total_amount":1000}}}`
	order, err := NormalizeOrder([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeOrder 失败: %v", err)
	}
	if order.ID != "5" || order.Status != "paid" {
		t.Errorf("信封归一化结果 = %+v", order)
	}
}

func TestNormalizeOrderMissingID(t *testing.T) {
	if _, err := NormalizeOrder([]byte(`{"status":"pending"}`)); err == nil {
		t.Error("缺少订单号应当报错")
	}
	if _, err := NormalizeOrder([]byte(`not json`)); err == nil {
		t.Error("非法 JSON 应当报错")
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/88" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order_id":88,"status":"pending","total_amount":150000,"types":"Transfer"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	order, err := client.Get(context.Background(), "88")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if order.ID != "88" || !order.IsPending() {
		t.Errorf("Get 结果 = %+v", order)
	}

	if _, err := client.Get(context.Background(), "404404"); err != ErrOrderNotFound {
		t.Errorf("不存在的订单期望 ErrOrderNotFound，得到 %v", err)
	}
	if _, err := client.Get(context.Background(), " "); err == nil {
		t.Error("空订单号应当报错")
	}
}

func TestClientUpdateStatus(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/orders/88/status" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if err := client.UpdateStatus(context.Background(), "88", "cancelled"); err != nil {
		t.Fatalf("UpdateStatus 失败: %v", err)
	}
	if gotBody["status"] != "cancelled" {
		t.Errorf("请求体 = %v", gotBody)
	}
}
