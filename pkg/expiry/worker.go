/*
	Package expiry 支付会话超时回收

	周期扫描支付缓存，把过期会话对应的上游订单标记取消并清掉
	缓存条目。确认流程自身也有超时定时器，这里兜底处理没有
	流程在跑的残留会话（比如服务重启后）。
*/
package expiry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"techzone/pkg/logger"
	"techzone/pkg/paycache"
)

// DefaultInterval 扫描周期
const DefaultInterval = time.Minute

// OrderCanceller 上游订单取消端
type OrderCanceller interface {
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// Worker 超时回收后台任务
type Worker struct {
	store    paycache.Store
	orders   OrderCanceller
	interval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWorker 创建回收任务
func NewWorker(store paycache.Store, orders OrderCanceller, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		store:    store,
		orders:   orders,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start 启动后台扫描
func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stopCh:
				return
			case <-ticker.C:
				w.Sweep()
			}
		}
	}()
}

// Stop 停止扫描，重复调用是幂等的
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Sweep 执行一轮回收，返回处理的会话数
func (w *Worker) Sweep() int {
	expired := 0
	for _, orderID := range w.store.OrderIDs() {
		if w.store.HasValid(orderID) {
			continue
		}
		w.cancel(orderID)
		expired++
	}
	if expired > 0 {
		logger.InfoString("Expiry", "Sweep", fmt.Sprintf("回收了 %d 个过期支付会话", expired))
	}
	return expired
}

// CancelAll 取消所有会话，服务下线前调用
func (w *Worker) CancelAll() int {
	ids := w.store.OrderIDs()
	for _, orderID := range ids {
		w.cancel(orderID)
	}
	return len(ids)
}

// cancel 取消单个会话：先回写上游，再清缓存
func (w *Worker) cancel(orderID string) {
	ctx, cancelFn := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFn()

	if err := w.orders.UpdateStatus(ctx, orderID, "cancelled"); err != nil {
		logger.WarnString("Expiry", "Cancel",
			fmt.Sprintf("订单 %s 上游取消失败：%v", orderID, err))
	}
	w.store.Remove(orderID)
}
