package expiry

import (
	"context"
	"sync"
	"testing"
	"time"

	"techzone/pkg/paycache"
)

// fakeStore 可控的支付缓存替身
type fakeStore struct {
	mu    sync.Mutex
	valid map[string]bool
}

func newFakeStore(valid map[string]bool) *fakeStore {
	return &fakeStore{valid: valid}
}

func (f *fakeStore) Save(orderID string, session *paycache.PaymentSession) error { return nil }
func (f *fakeStore) Get(orderID string) *paycache.PaymentSession                 { return nil }
func (f *fakeStore) Peek(orderID string) *paycache.PaymentSession                { return nil }
func (f *fakeStore) TimeRemaining(orderID string) time.Duration                  { return 0 }
func (f *fakeStore) RemoveAll() int                                              { return 0 }

func (f *fakeStore) HasValid(orderID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid[orderID]
}

func (f *fakeStore) Remove(orderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.valid, orderID)
}

func (f *fakeStore) OrderIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.valid))
	for id := range f.valid {
		ids = append(ids, id)
	}
	return ids
}

// fakeCanceller 记录被取消的订单
type fakeCanceller struct {
	mu        sync.Mutex
	cancelled map[string]string
}

func (f *fakeCanceller) UpdateStatus(ctx context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelled == nil {
		f.cancelled = make(map[string]string)
	}
	f.cancelled[orderID] = status
	return nil
}

func (f *fakeCanceller) status(orderID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled[orderID]
}

func TestWorkerSweep(t *testing.T) {
	store := newFakeStore(map[string]bool{
		"1": true,  // 仍有效
		"2": false, // 已过期
		"3": false, // 已过期
	})
	canceller := &fakeCanceller{}
	worker := NewWorker(store, canceller, time.Hour)

	if got := worker.Sweep(); got != 2 {
		t.Errorf("Sweep 回收了 %d 个，期望 2", got)
	}

	// 过期的取消并移除，有效的不动
	if canceller.status("2") != "cancelled" || canceller.status("3") != "cancelled" {
		t.Errorf("取消记录 = %v", canceller.cancelled)
	}
	if canceller.status("1") != "" {
		t.Error("有效会话不应被取消")
	}
	ids := store.OrderIDs()
	if len(ids) != 1 || ids[0] != "1" {
		t.Errorf("剩余会话 = %v", ids)
	}

	// 第二轮没有可回收的
	if got := worker.Sweep(); got != 0 {
		t.Errorf("重复 Sweep 回收了 %d 个，期望 0", got)
	}
}

func TestWorkerCancelAll(t *testing.T) {
	store := newFakeStore(map[string]bool{"1": true, "2": false})
	canceller := &fakeCanceller{}
	worker := NewWorker(store, canceller, time.Hour)

	if got := worker.CancelAll(); got != 2 {
		t.Errorf("CancelAll 处理了 %d 个，期望 2", got)
	}
	// 下线回收不分有效与否，全部取消
	if canceller.status("1") != "cancelled" || canceller.status("2") != "cancelled" {
		t.Errorf("取消记录 = %v", canceller.cancelled)
	}
	if len(store.OrderIDs()) != 0 {
		t.Error("CancelAll 后仍有残留会话")
	}
}

func TestWorkerStopIdempotent(t *testing.T) {
	worker := NewWorker(newFakeStore(nil), &fakeCanceller{}, time.Hour)
	worker.Start()
	worker.Stop()
	worker.Stop()
}
