package payment

import (
	"github.com/gin-gonic/gin"

	"techzone/pkg/confirm"
	"techzone/pkg/paycache"
	"techzone/pkg/response"
)

// ConfirmationController 支付确认会话控制器
//
// 会话由服务端持有：前端发起后轮询快照即可，到账事件和超时
// 都在服务端推进状态。
type ConfirmationController struct {
	manager    *confirm.Manager
	lastOrders *paycache.LastOrderRecorder
}

// NewConfirmationController 创建确认会话控制器
func NewConfirmationController() *ConfirmationController {
	return &ConfirmationController{
		manager:    confirm.DefaultManager,
		lastOrders: paycache.NewLastOrderRecorder(),
	}
}

// Store 发起确认会话
//
// POST /v1/payments/:order_id/confirmation
func (cc *ConfirmationController) Store(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		response.Abort400(c, "缺少订单号")
		return
	}

	flow, err := cc.manager.Start(c.Request.Context(), orderID)
	if err != nil {
		// 启动失败也有快照，失败原因在 message 里
		response.JSON(c, gin.H{
			"status": "error",
			"data":   snapshotView(flow.Snapshot()),
		})
		return
	}

	response.Created(c, snapshotView(flow.Snapshot()))
}

// Show 查询确认会话状态
//
// GET /v1/payments/:order_id/confirmation
func (cc *ConfirmationController) Show(c *gin.Context) {
	orderID := c.Param("order_id")
	flow := cc.manager.Get(orderID)
	if flow == nil {
		response.Abort404(c, "确认会话不存在")
		return
	}

	response.Data(c, snapshotView(flow.Snapshot()))
}

// Destroy 取消确认会话
//
// DELETE /v1/payments/:order_id/confirmation
// 缓存里的支付会话保留，用户回来还能续上倒计时。
func (cc *ConfirmationController) Destroy(c *gin.Context) {
	orderID := c.Param("order_id")
	if !cc.manager.Cancel(c.Request.Context(), orderID) {
		response.Abort404(c, "确认会话不存在")
		return
	}

	response.Data(c, gin.H{
		"order_id":  orderID,
		"cancelled": true,
	})
}

// LastOrder 查询最近一次完成支付的订单
//
// GET /v1/payments/last-order
func (cc *ConfirmationController) LastOrder(c *gin.Context) {
	record := cc.lastOrders.Get()
	if record == nil {
		response.Abort404(c, "暂无已完成的订单")
		return
	}

	response.Data(c, record)
}

// snapshotView 快照转响应体，剩余时长换算成秒
func snapshotView(snap confirm.Snapshot) gin.H {
	view := gin.H{
		"order_id": snap.OrderID,
		"state":    snap.State.String(),
	}
	if snap.Gencode != "" {
		view["gencode"] = snap.Gencode
	}
	if snap.QrURL != "" {
		view["qr_url"] = snap.QrURL
	}
	if snap.Amount > 0 {
		view["amount"] = snap.Amount
	}
	if snap.State == confirm.StateAwaitingPayment {
		view["remaining_seconds"] = int(snap.Remaining.Seconds())
	}
	if snap.Message != "" {
		view["message"] = snap.Message
	}
	return view
}
