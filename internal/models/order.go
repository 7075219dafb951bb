package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order 订单记录
// Items 与 UserDetails 在托管 API 中以 JSON 字符串保存
type Order struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	Items             string    `gorm:"type:text" json:"items"`
	Subtotal          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	ProductDiscount   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"productDiscount"`
	CartLevelDiscount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"cartLevelDiscount"`
	Total             Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total"`
	UserDetails       string    `gorm:"type:text" json:"userDetails"`
	OrderDate         time.Time `json:"orderDate"`
	Status            string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt         time.Time `gorm:"index" json:"createdAt"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate 分配订单 ID
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
