package paycache

import (
	"strconv"
	"sync"
	"time"

	"techzone/pkg/logger"
)

// SweepInterval 过期条目的后台清理间隔
const SweepInterval = time.Minute

// MemoryStore 进程内的支付会话存储
// 单机部署和测试环境使用；多实例部署用 RedisStore
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*PaymentSession
	stopCh   chan struct{}
	stopOnce sync.Once

	// 测试时可替换，用于校验 TTL 边界
	nowFunc func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*PaymentSession),
		stopCh:   make(chan struct{}),
		nowFunc:  time.Now,
	}
}

// Save 写入会话
func (m *MemoryStore) Save(orderID string, session *PaymentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[orderID] = session
	return nil
}

// Get 读取会话，过期条目视同不存在
// 过期条目留在表里，由调用方或后台清理决定去留
func (m *MemoryStore) Get(orderID string) *PaymentSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[orderID]
	if !ok || !session.ValidAt(m.nowFunc()) {
		return nil
	}
	return session
}

// Peek 读取会话，不判有效性
func (m *MemoryStore) Peek(orderID string) *PaymentSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[orderID]
}

// HasValid 判断是否存在未过期的会话
func (m *MemoryStore) HasValid(orderID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[orderID]
	return ok && session.ValidAt(m.nowFunc())
}

// TimeRemaining 会话剩余有效时长
func (m *MemoryStore) TimeRemaining(orderID string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[orderID]
	if !ok {
		return 0
	}
	return session.RemainingAt(m.nowFunc())
}

// Remove 删除会话，幂等
func (m *MemoryStore) Remove(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, orderID)
}

// OrderIDs 返回当前持有会话的全部订单号
func (m *MemoryStore) OrderIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// RemoveAll 清空全部会话
func (m *MemoryStore) RemoveAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.sessions)
	m.sessions = make(map[string]*PaymentSession)
	return count
}

// StartSweeper 启动后台清理协程，定期删除过期条目
func (m *MemoryStore) StartSweeper() {
	go func() {
		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				if cleaned := m.sweep(); cleaned > 0 {
					logger.DebugString("PayCache", "Sweep", "已清理过期会话："+strconv.Itoa(cleaned))
				}
			}
		}
	}()
}

// StopSweeper 停止后台清理协程
func (m *MemoryStore) StopSweeper() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

// sweep 删除所有已过期的条目，返回删除数量
func (m *MemoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	cleaned := 0
	for id, session := range m.sessions {
		if !session.ValidAt(now) {
			delete(m.sessions, id)
			cleaned++
		}
	}
	return cleaned
}
