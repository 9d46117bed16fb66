package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"techzone/pkg/logger"
	"techzone/pkg/orders"
	"techzone/pkg/paycache"
	"techzone/pkg/payment"
	"techzone/pkg/qr"
	"techzone/pkg/realtime"
)

// 终态后的收尾延迟，照顾完成页/失败页的展示节奏
const (
	DefaultConfirmDelay = 2 * time.Second
	DefaultExpireDelay  = 3 * time.Second
)

// ErrNotEligible 订单不满足 QR 支付条件
var ErrNotEligible = errors.New("confirm: order is not eligible for qr payment")

// ErrAlreadyStarted 流程重复启动
var ErrAlreadyStarted = errors.New("confirm: flow already started")

// QRGenerator QR 生成端
type QRGenerator interface {
	GenerateQr(ctx context.Context, amount int64, gencode string) (qr.Result, error)
}

// OrderService 订单服务端
type OrderService interface {
	Get(ctx context.Context, orderID string) (orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// Channel 实时通知端
type Channel interface {
	Connect(ctx context.Context) error
	JoinPaymentGroup(ctx context.Context, gencode string) error
	LeavePaymentGroup(ctx context.Context, gencode string)
	OnPaymentSuccess(fn func(realtime.PaymentEvent)) realtime.ListenerID
	OffPaymentSuccess(id realtime.ListenerID)
}

// LastOrderSink 最近完成订单的写入端
type LastOrderSink interface {
	Save(record *paycache.LastOrder) error
}

// Deps 流程依赖
type Deps struct {
	Cache      paycache.Store
	QR         QRGenerator
	Orders     OrderService
	Channel    Channel
	LastOrders LastOrderSink // 可为 nil

	// Gencode 交易码生成器，nil 时用默认实现
	Gencode func(orderID string) string

	ConfirmDelay time.Duration
	ExpireDelay  time.Duration
}

// Snapshot 对外暴露的流程快照
type Snapshot struct {
	OrderID   string        `json:"order_id"`
	State     State         `json:"state"`
	Gencode   string        `json:"gencode,omitempty"`
	QrURL     string        `json:"qr_url,omitempty"`
	Amount    int64         `json:"amount,omitempty"`
	Remaining time.Duration `json:"remaining_seconds,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Flow 单笔订单的确认流程
//
// 状态机：Idle → Loading → AwaitingPayment → Confirmed/Expired/Failed。
// 到账事件与超时竞争时先到先得，终态只落一次。
type Flow struct {
	orderID string
	deps    Deps

	mu       sync.Mutex
	state    State
	session  *paycache.PaymentSession
	qrURL    string
	message  string
	listener realtime.ListenerID
	joined   bool
	timer    *time.Timer

	cancelled    bool
	teardownOnce sync.Once
	done         chan struct{}

	nowFunc func() time.Time
}

// NewFlow 创建确认流程，Start 之前不做任何事
func NewFlow(orderID string, deps Deps) *Flow {
	if deps.Gencode == nil {
		deps.Gencode = payment.GenerateGencode
	}
	if deps.ConfirmDelay <= 0 {
		deps.ConfirmDelay = DefaultConfirmDelay
	}
	if deps.ExpireDelay <= 0 {
		deps.ExpireDelay = DefaultExpireDelay
	}
	return &Flow{
		orderID: orderID,
		deps:    deps,
		state:   StateIdle,
		done:    make(chan struct{}),
		nowFunc: time.Now,
	}
}

// Start 启动确认流程
//
// 缓存会话先于订单服务：有效会话整体复用且不回源拉订单，过期
// 会话意味着订单已被放弃，直接取消上游并落到 Expired，也不回源。
// 只有从未有过会话的订单才走拉取、校验、新建一条龙。
//
// 频道的顺序是固定的：先建立连接，再注册监听器，最后加入交易
// 频道。顺序反了会在订阅生效前丢掉已经广播的到账事件。
func (f *Flow) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	f.state = StateLoading
	f.mu.Unlock()

	session := f.deps.Cache.Peek(f.orderID)
	if session != nil && !session.ValidAt(f.nowFunc()) {
		f.expireAbandoned(ctx)
		return nil
	}

	var order orders.Order
	var qrURL string
	if session != nil {
		qrURL = session.QrURL
		if qrURL == "" {
			qrURL = f.resolveQrURL(ctx, order, session)
			session.QrURL = qrURL
			if err := f.deps.Cache.Save(f.orderID, session); err != nil {
				logger.WarnString("Confirm", "Cache", err.Error())
			}
		}
	} else {
		var err error
		order, err = f.deps.Orders.Get(ctx, f.orderID)
		if err != nil {
			f.fail(ctx, fmt.Sprintf("Không thể tải thông tin đơn hàng: %v", err))
			return err
		}
		if !order.IsPending() || !order.IsQrEligible() {
			f.fail(ctx, "Đơn hàng không hợp lệ cho thanh toán QR")
			return ErrNotEligible
		}
		session, qrURL = f.newSession(ctx, order)
	}

	if err := f.deps.Channel.Connect(ctx); err != nil {
		f.fail(ctx, "Không thể kết nối kênh thông báo thanh toán")
		return err
	}

	// 加入频道前就切到 AwaitingPayment：事件可能在 Join 返回途中
	// 同步送达，这时状态必须已经能接住它
	f.mu.Lock()
	f.session = session
	f.qrURL = qrURL
	f.state = StateAwaitingPayment
	remaining := session.RemainingAt(f.nowFunc())
	f.timer = time.AfterFunc(remaining, f.expire)
	f.mu.Unlock()

	listener := f.deps.Channel.OnPaymentSuccess(f.handleEvent)
	f.mu.Lock()
	f.listener = listener
	f.mu.Unlock()

	if err := f.deps.Channel.JoinPaymentGroup(ctx, session.TransactionCode()); err != nil {
		f.fail(ctx, "Không thể tham gia kênh giao dịch")
		return err
	}
	f.mu.Lock()
	f.joined = true
	f.mu.Unlock()

	logger.InfoString("Confirm", "Start",
		fmt.Sprintf("订单 %s 进入等待支付，剩余 %s", f.orderID, remaining))
	return nil
}

// newSession 为订单新建支付会话并解析 QR 地址
//
// QR 地址优先级：本次新生成的结果 > 缓存会话里的 > 订单自带的 >
// 降级兜底地址。
func (f *Flow) newSession(ctx context.Context, order orders.Order) (*paycache.PaymentSession, string) {
	gencode := order.Gencode
	if gencode == "" {
		gencode = f.deps.Gencode(order.ID)
	}
	session := paycache.NewSession(order.ID, order.TotalAmount, gencode)
	session.CreatedAt = f.nowFunc()
	session.QrURL = f.resolveQrURL(ctx, order, session)
	if err := f.deps.Cache.Save(order.ID, session); err != nil {
		logger.WarnString("Confirm", "Cache", err.Error())
	}
	return session, session.QrURL
}

// expireAbandoned 启动时发现会话已过期：订单按放弃处理，
// 取消上游、清缓存，不再生成新会话
func (f *Flow) expireAbandoned(ctx context.Context) {
	f.mu.Lock()
	f.state = StateExpired
	f.message = "Phiên thanh toán đã hết hạn"
	f.mu.Unlock()

	logger.WarnString("Confirm", "Expire",
		fmt.Sprintf("订单 %s 的支付会话已过期，按放弃处理", f.orderID))

	if err := f.deps.Orders.UpdateStatus(ctx, f.orderID, "cancelled"); err != nil {
		logger.ErrorString("Confirm", "Expire", "取消订单失败："+err.Error())
	}
	f.deps.Cache.Remove(f.orderID)

	time.AfterFunc(f.deps.ExpireDelay, func() {
		f.teardown(context.Background())
	})
}

// resolveQrURL 依次尝试各个 QR 来源
func (f *Flow) resolveQrURL(ctx context.Context, order orders.Order, session *paycache.PaymentSession) string {
	result, err := f.deps.QR.GenerateQr(ctx, session.Amount, session.TransactionCode())
	if err == nil && result.Kind != qr.KindError && result.Value != "" {
		return result.Value
	}
	if err != nil {
		logger.WarnString("Confirm", "QR", err.Error())
	}
	if session.QrURL != "" {
		return session.QrURL
	}
	if order.QrURL != "" {
		return order.QrURL
	}
	return qr.FallbackURL(order.ID, session.Amount)
}

// handleEvent 收到频道事件，宽松匹配本流程的交易
func (f *Flow) handleEvent(event realtime.PaymentEvent) {
	f.mu.Lock()
	if f.state != StateAwaitingPayment || f.session == nil {
		f.mu.Unlock()
		return
	}
	matched := event.Matches(f.session.TransactionCode(), f.orderID)
	f.mu.Unlock()

	if matched {
		f.confirm(event)
	}
}

// confirm 到账确认，只从 AwaitingPayment 迁入
func (f *Flow) confirm(event realtime.PaymentEvent) {
	f.mu.Lock()
	if f.state != StateAwaitingPayment || f.cancelled {
		f.mu.Unlock()
		return
	}
	f.state = StateConfirmed
	f.message = "Thanh toán thành công"
	if f.timer != nil {
		f.timer.Stop()
	}
	session := f.session
	f.mu.Unlock()

	logger.InfoString("Confirm", "Paid",
		fmt.Sprintf("订单 %s 到账确认，事件来源交易码 %v", f.orderID, event.Gencode))

	if f.deps.LastOrders != nil && session != nil {
		record := &paycache.LastOrder{
			OrderID:     session.OrderID,
			Amount:      session.Amount,
			Gencode:     session.Gencode,
			ConfirmedAt: f.nowFunc(),
		}
		if err := f.deps.LastOrders.Save(record); err != nil {
			logger.WarnString("Confirm", "LastOrder", err.Error())
		}
	}

	time.AfterFunc(f.deps.ConfirmDelay, func() {
		f.deps.Cache.Remove(f.orderID)
		f.teardown(context.Background())
	})
}

// expire 会话超时，取消上游订单并清缓存
func (f *Flow) expire() {
	f.mu.Lock()
	if f.state != StateAwaitingPayment || f.cancelled {
		f.mu.Unlock()
		return
	}
	f.state = StateExpired
	f.message = "Phiên thanh toán đã hết hạn"
	f.mu.Unlock()

	logger.WarnString("Confirm", "Expire", fmt.Sprintf("订单 %s 支付会话超时", f.orderID))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := f.deps.Orders.UpdateStatus(ctx, f.orderID, "cancelled"); err != nil {
		logger.ErrorString("Confirm", "Expire", "取消订单失败："+err.Error())
	}
	f.deps.Cache.Remove(f.orderID)

	time.AfterFunc(f.deps.ExpireDelay, func() {
		f.teardown(context.Background())
	})
}

// fail 进入失败终态
func (f *Flow) fail(ctx context.Context, message string) {
	f.mu.Lock()
	if f.state.IsTerminal() {
		f.mu.Unlock()
		return
	}
	f.state = StateFailed
	f.message = message
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()

	f.teardown(ctx)
}

// Cancel 用户主动离开：只做收尾，不迁移状态
// 缓存会话保留，回来重新发起时还能续上倒计时
func (f *Flow) Cancel(ctx context.Context) {
	f.mu.Lock()
	if f.cancelled || f.state.IsTerminal() {
		f.mu.Unlock()
		return
	}
	f.cancelled = true
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()

	f.teardown(ctx)
}

// teardown 注销监听器并退出频道，幂等
func (f *Flow) teardown(ctx context.Context) {
	f.teardownOnce.Do(func() {
		f.mu.Lock()
		listener := f.listener
		joined := f.joined
		var code string
		if f.session != nil {
			code = f.session.TransactionCode()
		}
		f.joined = false
		f.mu.Unlock()

		if listener != 0 {
			f.deps.Channel.OffPaymentSuccess(listener)
		}
		if joined && code != "" {
			f.deps.Channel.LeavePaymentGroup(ctx, code)
		}
		close(f.done)
	})
}

// Done 流程完全收尾后关闭
func (f *Flow) Done() <-chan struct{} {
	return f.done
}

// State 当前状态
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot 当前快照，供状态查询接口使用
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		OrderID: f.orderID,
		State:   f.state,
		QrURL:   f.qrURL,
		Message: f.message,
	}
	if f.session != nil {
		snap.Gencode = f.session.Gencode
		snap.Amount = f.session.Amount
		if f.state == StateAwaitingPayment {
			snap.Remaining = f.session.RemainingAt(f.nowFunc())
		}
	}
	return snap
}
