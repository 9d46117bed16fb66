package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"techzone/pkg/orders"
	"techzone/pkg/paycache"
	"techzone/pkg/qr"
	"techzone/pkg/realtime"
)

// scriptedChannel 记录调用顺序的通知端替身
type scriptedChannel struct {
	mu         sync.Mutex
	calls      []string
	listeners  map[realtime.ListenerID]func(realtime.PaymentEvent)
	next       realtime.ListenerID
	connectErr error
	joinErr    error

	// joinHook 在 Join 记录之后执行，用来模拟加入途中事件到达
	joinHook func()
}

func newScriptedChannel() *scriptedChannel {
	return &scriptedChannel{listeners: make(map[realtime.ListenerID]func(realtime.PaymentEvent))}
}

func (s *scriptedChannel) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "connect")
	return s.connectErr
}

func (s *scriptedChannel) JoinPaymentGroup(ctx context.Context, gencode string) error {
	s.mu.Lock()
	s.calls = append(s.calls, "join:"+gencode)
	err := s.joinErr
	hook := s.joinHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (s *scriptedChannel) LeavePaymentGroup(ctx context.Context, gencode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "leave:"+gencode)
}

func (s *scriptedChannel) OnPaymentSuccess(fn func(realtime.PaymentEvent)) realtime.ListenerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "on")
	s.next++
	s.listeners[s.next] = fn
	return s.next
}

func (s *scriptedChannel) OffPaymentSuccess(id realtime.ListenerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "off")
	delete(s.listeners, id)
}

// emit 模拟频道收到事件
func (s *scriptedChannel) emit(event realtime.PaymentEvent) {
	s.mu.Lock()
	fns := make([]func(realtime.PaymentEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

func (s *scriptedChannel) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// fakeOrders 订单服务替身
type fakeOrders struct {
	mu      sync.Mutex
	order   orders.Order
	getErr  error
	gets    int
	updated map[string]string
}

func (f *fakeOrders) Get(ctx context.Context, orderID string) (orders.Order, error) {
	f.mu.Lock()
	f.gets++
	f.mu.Unlock()
	if f.getErr != nil {
		return orders.Order{}, f.getErr
	}
	return f.order, nil
}

func (f *fakeOrders) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = make(map[string]string)
	}
	f.updated[orderID] = status
	return nil
}

func (f *fakeOrders) updatedStatus(orderID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated[orderID]
}

// fakeQR QR 生成端替身
type fakeQR struct {
	mu          sync.Mutex
	result      qr.Result
	err         error
	calls       int
	lastAmount  int64
	lastGencode string
}

func (f *fakeQR) GenerateQr(ctx context.Context, amount int64, gencode string) (qr.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastAmount = amount
	f.lastGencode = gencode
	return f.result, f.err
}

func (f *fakeQR) lastArgs() (int64, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAmount, f.lastGencode
}

func (f *fakeQR) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSink 最近完成订单的替身
type fakeSink struct {
	mu     sync.Mutex
	record *paycache.LastOrder
}

func (f *fakeSink) Save(record *paycache.LastOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record = record
	return nil
}

func (f *fakeSink) saved() *paycache.LastOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

func pendingOrder() orders.Order {
	return orders.Order{
		ID:          "88",
		Status:      "pending",
		TotalAmount: 150000,
		Types:       "Transfer",
	}
}

func testDeps(channel *scriptedChannel, svc *fakeOrders, gen *fakeQR) Deps {
	return Deps{
		Cache:        paycache.NewMemoryStore(),
		QR:           gen,
		Orders:       svc,
		Channel:      channel,
		Gencode:      func(orderID string) string { return "gen-" + orderID },
		ConfirmDelay: 5 * time.Millisecond,
		ExpireDelay:  5 * time.Millisecond,
	}
}

func waitDone(t *testing.T, flow *Flow) {
	t.Helper()
	select {
	case <-flow.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("等待流程收尾超时")
	}
}

func TestFlowStartOrdering(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	flow := NewFlow("88", testDeps(channel, svc, gen))
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	if got := flow.State(); got != StateAwaitingPayment {
		t.Errorf("状态 = %v，期望 awaiting_payment", got)
	}

	// 先连接，再注册监听器，最后加入频道
	calls := channel.callLog()
	want := []string{"connect", "on", "join:gen-88"}
	if len(calls) != 3 {
		t.Fatalf("频道调用 = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("频道调用第 %d 步 = %q，期望 %q", i, calls[i], want[i])
		}
	}

	snap := flow.Snapshot()
	if snap.QrURL != "https://x/qr.png" || snap.Gencode != "gen-88" {
		t.Errorf("快照 = %+v", snap)
	}
	if snap.Remaining <= 29*time.Minute {
		t.Errorf("新会话剩余时长 = %v", snap.Remaining)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowRejectsIneligibleOrder(t *testing.T) {
	channel := newScriptedChannel()
	order := pendingOrder()
	order.Types = "COD"
	svc := &fakeOrders{order: order}

	flow := NewFlow("88", testDeps(channel, svc, &fakeQR{}))
	if err := flow.Start(context.Background()); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("期望 ErrNotEligible，得到 %v", err)
	}
	if got := flow.State(); got != StateFailed {
		t.Errorf("状态 = %v，期望 failed", got)
	}
	// 不合规订单根本不应触碰频道
	if calls := channel.callLog(); len(calls) != 0 {
		t.Errorf("频道调用 = %v，期望为空", calls)
	}
	waitDone(t, flow)
}

func TestFlowOrderFetchError(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{getErr: errors.New("connection refused")}

	flow := NewFlow("88", testDeps(channel, svc, &fakeQR{}))
	if err := flow.Start(context.Background()); err == nil {
		t.Fatal("订单拉取失败应当返回错误")
	}
	if got := flow.State(); got != StateFailed {
		t.Errorf("状态 = %v，期望 failed", got)
	}
	waitDone(t, flow)
}

func TestFlowJoinFailureRollsBack(t *testing.T) {
	channel := newScriptedChannel()
	channel.joinErr = errors.New("subscribe failed")
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	flow := NewFlow("88", testDeps(channel, svc, gen))
	if err := flow.Start(context.Background()); err == nil {
		t.Fatal("加入频道失败应当返回错误")
	}
	if got := flow.State(); got != StateFailed {
		t.Errorf("状态 = %v，期望 failed", got)
	}
	waitDone(t, flow)

	// 收尾要注销已经挂上的监听器
	calls := channel.callLog()
	if calls[len(calls)-1] != "off" {
		t.Errorf("收尾调用 = %v，期望以 off 结束", calls)
	}
}

func TestFlowConfirmOnMatchingEvent(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}
	sink := &fakeSink{}

	deps := testDeps(channel, svc, gen)
	deps.LastOrders = sink
	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	// orderId 是数字也要能对上
	channel.emit(realtime.PaymentEvent{OrderID: float64(88), Amount: 150000})

	if got := flow.State(); got != StateConfirmed {
		t.Fatalf("状态 = %v，期望 confirmed", got)
	}
	waitDone(t, flow)

	// 收尾后：缓存清掉、最近订单落盘、频道退订
	if deps.Cache.Get("88") != nil {
		t.Error("确认后缓存会话应当删除")
	}
	record := sink.saved()
	if record == nil || record.OrderID != "88" || record.Amount != 150000 {
		t.Errorf("最近订单记录 = %+v", record)
	}
	calls := channel.callLog()
	if calls[len(calls)-2] != "off" || calls[len(calls)-1] != "leave:gen-88" {
		t.Errorf("收尾调用 = %v", calls)
	}
}

func TestFlowIgnoresMismatchedEvent(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	flow := NewFlow("88", testDeps(channel, svc, gen))
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	channel.emit(realtime.PaymentEvent{Gencode: "gen-99", OrderID: "99"})
	if got := flow.State(); got != StateAwaitingPayment {
		t.Errorf("不匹配的事件推进了状态: %v", got)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowExpires(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	deps := testDeps(channel, svc, gen)
	// 预置一个即将到期的会话，流程续上后很快触发超时
	session := paycache.NewSession("88", 150000, "gen-88")
	session.QrURL = "https://x/qr.png"
	session.CreatedAt = time.Now().Add(-paycache.TTL + 30*time.Millisecond)
	deps.Cache.Save("88", session)

	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	waitDone(t, flow)

	if got := flow.State(); got != StateExpired {
		t.Errorf("状态 = %v，期望 expired", got)
	}
	// 超时后上游订单标记取消，缓存清掉
	if got := svc.updatedStatus("88"); got != "cancelled" {
		t.Errorf("上游状态 = %q，期望 cancelled", got)
	}
	if deps.Cache.Get("88") != nil {
		t.Error("超时后缓存会话应当删除")
	}
}

func TestFlowExpiredSessionAtStart(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	deps := testDeps(channel, svc, gen)
	// 启动时会话就已经过期：订单按放弃处理
	session := paycache.NewSession("88", 150000, "gen-old")
	session.CreatedAt = time.Now().Add(-paycache.TTL - 5*time.Minute)
	deps.Cache.Save("88", session)

	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	waitDone(t, flow)

	if got := flow.State(); got != StateExpired {
		t.Errorf("状态 = %v，期望 expired", got)
	}
	// 上游订单标记取消，缓存清掉
	if got := svc.updatedStatus("88"); got != "cancelled" {
		t.Errorf("上游状态 = %q，期望 cancelled", got)
	}
	if deps.Cache.Peek("88") != nil {
		t.Error("过期会话应当从缓存删除")
	}
	// 放弃的订单不续期：不生成新 QR，也不触碰频道
	if gen.callCount() != 0 {
		t.Errorf("QR 生成了 %d 次，期望 0", gen.callCount())
	}
	if calls := channel.callLog(); len(calls) != 0 {
		t.Errorf("频道调用 = %v，期望为空", calls)
	}
}

func TestFlowConfirmsEventArrivingDuringJoin(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	// 到账事件在 Join 返回途中同步送达
	channel.joinHook = func() {
		channel.emit(realtime.PaymentEvent{Gencode: "gen-88", Amount: 150000})
	}

	flow := NewFlow("88", testDeps(channel, svc, gen))
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	if got := flow.State(); got != StateConfirmed {
		t.Errorf("状态 = %v，期望 confirmed", got)
	}
	waitDone(t, flow)
}

func TestFlowValidCacheSkipsOrderFetch(t *testing.T) {
	channel := newScriptedChannel()
	// 订单服务整体不可用
	svc := &fakeOrders{getErr: errors.New("connection refused")}
	gen := &fakeQR{}

	deps := testDeps(channel, svc, gen)
	session := paycache.NewSession("88", 150000, "gen-old")
	session.QrURL = "https://x/cached.png"
	session.CreatedAt = time.Now().Add(-5 * time.Minute)
	deps.Cache.Save("88", session)

	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("有效会话在手时不应回源拉订单: %v", err)
	}

	if got := flow.State(); got != StateAwaitingPayment {
		t.Errorf("状态 = %v，期望 awaiting_payment", got)
	}
	if got := svc.getCount(); got != 0 {
		t.Errorf("订单拉取了 %d 次，期望 0", got)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowQrArgsForCachedSessionWithoutURL(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/fresh.png"}}

	deps := testDeps(channel, svc, gen)
	// 有效会话缺 QR 地址：按会话金额和交易码补生成
	session := paycache.NewSession("88", 150000, "gen-old")
	session.CreatedAt = time.Now().Add(-5 * time.Minute)
	deps.Cache.Save("88", session)

	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	if gen.callCount() != 1 {
		t.Fatalf("QR 生成了 %d 次，期望 1", gen.callCount())
	}
	amount, gencode := gen.lastArgs()
	if amount != 150000 || gencode != "gen-old" {
		t.Errorf("QR 参数 = (%d, %q)，期望 (150000, gen-old)", amount, gencode)
	}
	if snap := flow.Snapshot(); snap.QrURL != "https://x/fresh.png" {
		t.Errorf("快照 QR = %q", snap.QrURL)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowQrArgsFallBackToOrderID(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/fresh.png"}}

	deps := testDeps(channel, svc, gen)
	// 会话没有交易码时，QR 生成退回订单号
	session := paycache.NewSession("88", 150000, "")
	session.CreatedAt = time.Now().Add(-5 * time.Minute)
	deps.Cache.Save("88", session)

	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	if _, gencode := gen.lastArgs(); gencode != "88" {
		t.Errorf("QR 交易码参数 = %q，期望订单号 88", gencode)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowReusesCachedSession(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/fresh.png"}}

	deps := testDeps(channel, svc, gen)
	session := paycache.NewSession("88", 150000, "gen-old")
	session.QrURL = "https://x/cached.png"
	session.CreatedAt = time.Now().Add(-5 * time.Minute)
	deps.Cache.Save("88", session)

	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	// 有效会话整体复用：交易码、QR、剩余时长都续上
	snap := flow.Snapshot()
	if snap.Gencode != "gen-old" || snap.QrURL != "https://x/cached.png" {
		t.Errorf("快照 = %+v，期望复用缓存会话", snap)
	}
	if snap.Remaining > 25*time.Minute+time.Second {
		t.Errorf("剩余时长 = %v，期望续用旧会话的倒计时", snap.Remaining)
	}
	if gen.callCount() != 0 {
		t.Error("缓存里已有 QR 时不应重新生成")
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowQrFallbackPriority(t *testing.T) {
	channel := newScriptedChannel()
	order := pendingOrder()
	order.QrURL = "https://x/order.png"
	svc := &fakeOrders{order: order}
	// QR 接口全挂
	gen := &fakeQR{result: qr.Result{Kind: qr.KindError}, err: errors.New("all endpoints failed")}

	flow := NewFlow("88", testDeps(channel, svc, gen))
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	// 生成失败时退到订单自带的 QR
	if snap := flow.Snapshot(); snap.QrURL != "https://x/order.png" {
		t.Errorf("快照 QR = %q，期望订单自带地址", snap.QrURL)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)
}

func TestFlowCancelKeepsSession(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	deps := testDeps(channel, svc, gen)
	flow := NewFlow("88", deps)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	flow.Cancel(context.Background())
	waitDone(t, flow)

	// 主动离开只做收尾，状态不迁移
	if got := flow.State(); got != StateAwaitingPayment {
		t.Errorf("取消后状态 = %v，期望保持 awaiting_payment", got)
	}
	// 缓存会话保留，回来还能续上倒计时
	if deps.Cache.Get("88") == nil {
		t.Error("取消后缓存会话不应删除")
	}
	// 上游订单也不动
	if got := svc.updatedStatus("88"); got != "" {
		t.Errorf("取消不应回写上游状态，得到 %q", got)
	}
	// 收尾后事件不再推进状态
	channel.emit(realtime.PaymentEvent{Gencode: "gen-88"})
	if got := flow.State(); got != StateAwaitingPayment {
		t.Errorf("取消后的事件推进了状态: %v", got)
	}

	// 重复取消是幂等的
	flow.Cancel(context.Background())
}

func TestFlowTerminalStateIgnoresLateEvents(t *testing.T) {
	channel := newScriptedChannel()
	svc := &fakeOrders{order: pendingOrder()}
	gen := &fakeQR{result: qr.Result{Kind: qr.KindURL, Value: "https://x/qr.png"}}

	flow := NewFlow("88", testDeps(channel, svc, gen))
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}

	channel.emit(realtime.PaymentEvent{Gencode: "gen-88"})
	if got := flow.State(); got != StateConfirmed {
		t.Fatalf("状态 = %v", got)
	}

	// 终态后的重复事件不再推进状态
	channel.emit(realtime.PaymentEvent{Gencode: "gen-88"})
	if got := flow.State(); got != StateConfirmed {
		t.Errorf("重复事件改变了终态: %v", got)
	}
	waitDone(t, flow)
}
