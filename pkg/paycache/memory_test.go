package paycache

import (
	"testing"
	"time"
)

func newTestStore(now time.Time) (*MemoryStore, *time.Time) {
	clock := now
	store := NewMemoryStore()
	store.nowFunc = func() time.Time { return clock }
	return store, &clock
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(now)

	session := NewSession("88", 150000, "ORDER_88_20250601120000_ab12cd34")
	session.CreatedAt = now
	if err := store.Save("88", session); err != nil {
		t.Fatalf("Save 失败: %v", err)
	}

	got := store.Get("88")
	if got == nil {
		t.Fatal("Get 返回 nil，期望会话")
	}
	if got.Amount != 150000 || got.Gencode != session.Gencode {
		t.Errorf("Get 返回的会话不完整: %+v", got)
	}

	if store.Get("99") != nil {
		t.Error("不存在的订单应当返回 nil")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, clock := newTestStore(now)

	session := NewSession("88", 150000, "gen")
	session.CreatedAt = now
	store.Save("88", session)

	*clock = now.Add(TTL - time.Second)
	if !store.HasValid("88") {
		t.Error("过期前一秒应当有效")
	}

	// 到达 TTL 整点即失效
	*clock = now.Add(TTL)
	if store.HasValid("88") {
		t.Error("到达 TTL 整点应当失效")
	}
	if store.Get("88") != nil {
		t.Error("过期会话的 Get 应当返回 nil")
	}

	// 过期条目对 Peek 仍然可见，放弃判定和后台清理都依赖它
	peeked := store.Peek("88")
	if peeked == nil || peeked.Gencode != "gen" {
		t.Errorf("Peek = %+v，期望拿到过期会话", peeked)
	}
	if ids := store.OrderIDs(); len(ids) != 1 {
		t.Errorf("过期条目被 Get 顺手删除了: %v", ids)
	}
}

func TestMemoryStoreTimeRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, clock := newTestStore(now)

	session := NewSession("88", 150000, "gen")
	session.CreatedAt = now
	store.Save("88", session)

	*clock = now.Add(25 * time.Minute)
	if got := store.TimeRemaining("88"); got != 5*time.Minute {
		t.Errorf("TimeRemaining = %v，期望 5m", got)
	}
	if got := store.TimeRemaining("99"); got != 0 {
		t.Errorf("不存在的订单 TimeRemaining = %v，期望 0", got)
	}
}

func TestMemoryStoreRemoveIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(now)

	session := NewSession("88", 150000, "gen")
	session.CreatedAt = now
	store.Save("88", session)

	store.Remove("88")
	if store.Get("88") != nil {
		t.Error("Remove 后仍能读到会话")
	}

	// 重复删除和删除不存在的键都不报错
	store.Remove("88")
	store.Remove("never-existed")
}

func TestMemoryStoreSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, clock := newTestStore(now)

	fresh := NewSession("1", 100, "gen-1")
	fresh.CreatedAt = now.Add(20 * time.Minute)
	stale := NewSession("2", 200, "gen-2")
	stale.CreatedAt = now
	store.Save("1", fresh)
	store.Save("2", stale)

	*clock = now.Add(TTL)
	if cleaned := store.sweep(); cleaned != 1 {
		t.Errorf("sweep 清理了 %d 条，期望 1", cleaned)
	}
	if !store.HasValid("1") {
		t.Error("未过期的会话不应被清理")
	}

	// OrderIDs 反映清理后的存量
	if ids := store.OrderIDs(); len(ids) != 1 || ids[0] != "1" {
		t.Errorf("OrderIDs = %v，期望 [1]", ids)
	}
}

func TestMemoryStoreRemoveAll(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(now)

	for _, id := range []string{"1", "2", "3"} {
		session := NewSession(id, 100, "gen-"+id)
		session.CreatedAt = now
		store.Save(id, session)
	}

	if count := store.RemoveAll(); count != 3 {
		t.Errorf("RemoveAll 返回 %d，期望 3", count)
	}
	if len(store.OrderIDs()) != 0 {
		t.Error("RemoveAll 后仍有残留会话")
	}
}
