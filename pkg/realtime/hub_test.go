package realtime

import (
	"context"
	"sync"
	"testing"
)

// dispatch 和监听器注册表不依赖 Redis，可以直接测

func TestHubListenerRegistry(t *testing.T) {
	hub := NewHub(nil)

	var mu sync.Mutex
	var got []string

	idA := hub.OnPaymentSuccess(func(e PaymentEvent) {
		mu.Lock()
		got = append(got, "a:"+e.Gencode)
		mu.Unlock()
	})
	idB := hub.OnPaymentSuccess(func(e PaymentEvent) {
		mu.Lock()
		got = append(got, "b:"+e.Gencode)
		mu.Unlock()
	})
	if idA == idB {
		t.Fatal("监听器句柄不应重复")
	}

	hub.dispatch(PaymentEvent{Gencode: "gen-1"})
	mu.Lock()
	if len(got) != 2 {
		t.Errorf("分发后收到 %d 次回调，期望 2", len(got))
	}
	got = nil
	mu.Unlock()

	// 注销其中一个后只剩另一个收到
	hub.OffPaymentSuccess(idA)
	hub.dispatch(PaymentEvent{Gencode: "gen-2"})
	mu.Lock()
	if len(got) != 1 || got[0] != "b:gen-2" {
		t.Errorf("注销后回调 = %v", got)
	}
	mu.Unlock()

	// 重复注销是幂等的
	hub.OffPaymentSuccess(idA)
	hub.OffPaymentSuccess(idA)
}

func TestHubListenerCanOffItself(t *testing.T) {
	hub := NewHub(nil)

	count := 0
	var id ListenerID
	id = hub.OnPaymentSuccess(func(e PaymentEvent) {
		count++
		// 回调在锁外执行，自我注销不会死锁
		hub.OffPaymentSuccess(id)
	})

	hub.dispatch(PaymentEvent{Gencode: "gen"})
	hub.dispatch(PaymentEvent{Gencode: "gen"})

	if count != 1 {
		t.Errorf("自我注销后仍收到回调，count = %d", count)
	}
}

func TestHubJoinRequiresConnect(t *testing.T) {
	hub := NewHub(nil)

	if err := hub.JoinPaymentGroup(context.Background(), "gen"); err != ErrNotConnected {
		t.Errorf("未连接时 Join 期望 ErrNotConnected，得到 %v", err)
	}
	// 未连接时 Leave 静默返回
	hub.LeavePaymentGroup(context.Background(), "gen")
}
