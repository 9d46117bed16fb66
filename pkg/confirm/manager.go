package confirm

import (
	"context"
	"sync"
)

// Manager 确认流程注册表
//
// 以订单号为键，同一订单并发发起确认只会有一个流程在跑。
// 终态流程留在表里供状态查询，被下一次 Start 替换。
type Manager struct {
	deps Deps

	mu    sync.Mutex
	flows map[string]*Flow
}

// 进程级默认实例，bootstrap 阶段初始化
var DefaultManager *Manager

// NewManager 创建流程注册表
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:  deps,
		flows: make(map[string]*Flow),
	}
}

// Start 为订单启动确认流程
//
// 已有未结束的流程时直接复用，不重复启动。
func (m *Manager) Start(ctx context.Context, orderID string) (*Flow, error) {
	m.mu.Lock()
	if flow, ok := m.flows[orderID]; ok && !flow.State().IsTerminal() {
		m.mu.Unlock()
		return flow, nil
	}
	flow := NewFlow(orderID, m.deps)
	m.flows[orderID] = flow
	m.mu.Unlock()

	if err := flow.Start(ctx); err != nil {
		return flow, err
	}
	return flow, nil
}

// Get 查询订单的流程，没有时返回 nil
func (m *Manager) Get(orderID string) *Flow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flows[orderID]
}

// Cancel 取消订单的流程并从表中移除
func (m *Manager) Cancel(ctx context.Context, orderID string) bool {
	m.mu.Lock()
	flow, ok := m.flows[orderID]
	if ok {
		delete(m.flows, orderID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	flow.Cancel(ctx)
	return true
}

// Shutdown 服务退出前取消所有进行中的流程
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	flows := make([]*Flow, 0, len(m.flows))
	for _, flow := range m.flows {
		flows = append(flows, flow)
	}
	m.flows = make(map[string]*Flow)
	m.mu.Unlock()

	for _, flow := range flows {
		flow.Cancel(ctx)
	}
}
