package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRow 托管购物车集合中的一行（商品字段冗余存储）
type CartRow struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	ProductID       string    `gorm:"type:varchar(64);not null;index" json:"productId"`
	ProductName     string    `gorm:"type:varchar(255)" json:"productName"`
	ProductImage    string    `gorm:"type:varchar(1024)" json:"productImage"`
	ProductPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"productPrice"`
	ProductDiscount Money     `gorm:"type:decimal(5,2);not null;default:0" json:"productDiscount"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	Subtotal        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
}

// TableName 指定表名
func (CartRow) TableName() string {
	return "cart_rows"
}

// BeforeCreate 分配行 ID
func (r *CartRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
