package migrations

import (
	"techzone/app/models/order"
	"techzone/app/models/payment"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&order.Order{},
		&payment.Payment{},
		&payment.BankTransaction{},
	}
}
