package realtime

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"techzone/pkg/logger"
	"techzone/pkg/redis"
)

// ErrNotConnected 未 Connect 就加入频道
var ErrNotConnected = errors.New("realtime: hub not connected")

// ListenerID 监听器句柄，用于 Off
type ListenerID int

// Hub 实时通知中枢
//
// 生命周期约定：先 Connect，再注册监听器，最后加入频道。
// 频道按交易码引用计数，同一交易重复 Join 只订阅一次，
// 计数归零才真正退订。
type Hub struct {
	rds *redis.RedisClient

	mu        sync.Mutex
	connected bool
	pubsub    *goredis.PubSub
	groups    map[string]int
	listeners map[ListenerID]func(PaymentEvent)
	nextID    ListenerID
	cancel    context.CancelFunc
}

// 进程级默认实例，bootstrap 阶段初始化
var Default *Hub

// NewHub 创建通知中枢
func NewHub(rds *redis.RedisClient) *Hub {
	return &Hub{
		rds:       rds,
		groups:    make(map[string]int),
		listeners: make(map[ListenerID]func(PaymentEvent)),
	}
}

// Connect 建立订阅连接，重复调用是幂等的
func (h *Hub) Connect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connected {
		return nil
	}

	if err := h.rds.Ping(); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	// 先建立空订阅，频道由 Join 动态加入
	pubsub := h.rds.Client.Subscribe(ctx)
	h.pubsub = pubsub
	h.cancel = cancel
	h.connected = true
	go h.receive(loopCtx, pubsub)

	logger.InfoString("Realtime", "Connect", "通知频道已建立")
	return nil
}

// Disconnect 关闭订阅连接并清空频道状态，监听器保留
func (h *Hub) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.connected {
		return
	}
	h.cancel()
	_ = h.pubsub.Close()
	h.pubsub = nil
	h.connected = false
	h.groups = make(map[string]int)
}

// JoinPaymentGroup 加入交易对应的频道
func (h *Hub) JoinPaymentGroup(ctx context.Context, gencode string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.connected {
		return ErrNotConnected
	}

	group := GroupName(gencode)
	h.groups[group]++
	if h.groups[group] > 1 {
		return nil
	}
	if err := h.pubsub.Subscribe(ctx, group); err != nil {
		h.groups[group]--
		if h.groups[group] <= 0 {
			delete(h.groups, group)
		}
		return err
	}
	return nil
}

// LeavePaymentGroup 离开交易对应的频道，多余的调用不报错
func (h *Hub) LeavePaymentGroup(ctx context.Context, gencode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.connected {
		return
	}

	group := GroupName(gencode)
	count, ok := h.groups[group]
	if !ok {
		return
	}
	if count > 1 {
		h.groups[group] = count - 1
		return
	}
	delete(h.groups, group)
	if err := h.pubsub.Unsubscribe(ctx, group); err != nil {
		logger.WarnString("Realtime", "Leave", err.Error())
	}
}

// OnPaymentSuccess 注册支付成功监听器，返回句柄用于注销
func (h *Hub) OnPaymentSuccess(fn func(PaymentEvent)) ListenerID {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	return id
}

// OffPaymentSuccess 注销监听器，重复注销是幂等的
func (h *Hub) OffPaymentSuccess(id ListenerID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.listeners, id)
}

// Publish 向交易频道广播支付成功事件（webhook 侧调用）
func (h *Hub) Publish(ctx context.Context, gencode string, event PaymentEvent) error {
	payload, err := event.Encode()
	if err != nil {
		return err
	}
	return h.rds.Client.Publish(ctx, GroupName(gencode), payload).Err()
}

// receive 订阅消息循环
func (h *Hub) receive(ctx context.Context, pubsub *goredis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			event, err := DecodeEvent(msg.Payload)
			if err != nil {
				logger.WarnString("Realtime", "Receive", "消息解析失败："+err.Error())
				continue
			}
			h.dispatch(event)
		}
	}
}

// dispatch 把事件分发给所有监听器
// 回调在锁外执行，监听器内部可以安全地 Off 自己
func (h *Hub) dispatch(event PaymentEvent) {
	h.mu.Lock()
	fns := make([]func(PaymentEvent), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
