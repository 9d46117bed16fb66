package order

import (
	"time"
)

// Order 订单模型
type Order struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"order_id"`
	UserID       uint64     `gorm:"index" json:"user_id"`
	CustomerName string     `gorm:"type:varchar(100)" json:"customer_name"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`
	Address      string     `gorm:"type:varchar(255)" json:"address"`
	Status       string     `gorm:"type:varchar(20);index" json:"status"`
	Types        string     `gorm:"type:varchar(20)" json:"types"`
	TotalAmount  int64      `gorm:"" json:"total_amount"`
	Gencode      string     `gorm:"type:varchar(64);uniqueIndex" json:"gencode"`
	QrURL        string     `gorm:"type:varchar(512)" json:"qr_url"`
	PaidAt       *time.Time `gorm:"" json:"paid_at"`
	CreatedAt    time.Time  `gorm:"" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"" json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
