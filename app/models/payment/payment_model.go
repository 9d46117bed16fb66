package payment

import (
	"time"
)

// Payment 支付记录模型
type Payment struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo       string     `gorm:"type:varchar(64);uniqueIndex" json:"order_no"`
	OrderID       uint64     `gorm:"index" json:"order_id"`
	UserID        string     `gorm:"type:varchar(36);index" json:"user_id"`
	Provider      string     `gorm:"type:varchar(20)" json:"provider"`
	Amount        int64      `gorm:"" json:"amount"`
	Status        string     `gorm:"type:varchar(20);index" json:"status"`
	Gencode       string     `gorm:"type:varchar(64);index" json:"gencode"`
	TransactionID string     `gorm:"type:varchar(64)" json:"transaction_id"`
	QrURL         string     `gorm:"type:varchar(512)" json:"qr_url"`
	PayAt         *time.Time `gorm:"" json:"pay_at"`
	ExpireAt      *time.Time `gorm:"" json:"expire_at"`
	ExtraData     JSON       `gorm:"type:json" json:"extra_data"`
	CreatedAt     time.Time  `gorm:"" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"" json:"updated_at"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// BankTransaction 银行流水记录
// 由 webhook（/hooks/transaction）写入，用于与待支付订单对账
type BankTransaction struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Gateway         string    `gorm:"type:varchar(50)" json:"gateway"`
	TransactionDate time.Time `gorm:"" json:"transaction_date"`
	AccountNumber   string    `gorm:"type:varchar(32)" json:"account_number"`
	Code            string    `gorm:"type:varchar(64)" json:"code"`
	Content         string    `gorm:"type:varchar(255)" json:"content"`
	TransferType    string    `gorm:"type:varchar(10)" json:"transfer_type"`
	TransferAmount  int64     `gorm:"" json:"transfer_amount"`
	Accumulated     int64     `gorm:"" json:"accumulated"`
	SubAccount      string    `gorm:"type:varchar(32)" json:"sub_account"`
	ReferenceCode   string    `gorm:"type:varchar(64);index" json:"reference_code"`
	Description     string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt       time.Time `gorm:"" json:"created_at"`
}

// TableName 指定表名
func (BankTransaction) TableName() string {
	return "bank_transactions"
}
