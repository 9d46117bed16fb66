package confirm

import (
	"context"
	"testing"

	"techzone/pkg/qr"
)

func TestManagerReusesActiveFlow(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	manager := NewManager(testDeps(channel, svc, gen))

	first, err := manager.Start(context.Background(), "88")
	if err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	second, err := manager.Start(context.Background(), "88")
	if err != nil {
		t.Fatalf("重复 Start 失败: %v", err)
	}
	if first != second {
		t.Error("进行中的流程应当被复用")
	}
	// 复用时不重复建立频道
	if calls := channel.callLog(); len(calls) != 3 {
		t.Errorf("频道调用 = %v，期望只有一轮", calls)
	}

	if manager.Get("88") != first {
		t.Error("Get 应当返回进行中的流程")
	}
	if manager.Get("99") != nil {
		t.Error("未知订单应当返回 nil")
	}

	manager.Shutdown(context.Background())
	waitDone(t, first)
}

func TestManagerCancel(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	manager := NewManager(testDeps(channel, svc, gen))

	flow, err := manager.Start(context.Background(), "88")
	if err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	if !manager.Cancel(context.Background(), "88") {
		t.Error("取消进行中的流程应当返回 true")
	}
	waitDone(t, flow)

	if manager.Get("88") != nil {
		t.Error("取消后流程应当从注册表移除")
	}
	if manager.Cancel(context.Background(), "88") {
		t.Error("重复取消应当返回 false")
	}
}
