package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"techzone/app/models/order"
	"techzone/pkg/database"
)

// OrderRepository 订单仓库
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建仓库实例
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		db: database.DB,
	}
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// GetByID 根据订单 ID 获取订单
func (r *OrderRepository) GetByID(ctx context.Context, id uint64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetPendingByGencode 根据 gencode 获取待支付订单
// webhook 对账时使用：流水描述中携带 gencode
func (r *OrderRepository) GetPendingByGencode(ctx context.Context, gencode string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Where("gencode = ? AND status = ?", gencode, string(order.StatusPending)).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus 更新订单状态
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint64, status order.Status) error {
	return r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

// MarkPaid 将订单标记为已支付
func (r *OrderRepository) MarkPaid(ctx context.Context, id uint64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND status = ?", id, string(order.StatusPending)).
		Updates(map[string]interface{}{
			"status":  string(order.StatusPaid),
			"paid_at": &now,
		}).Error
}
