package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product 商品目录记录
type Product struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Image         string    `gorm:"type:varchar(1024)" json:"image"`
	Category      string    `gorm:"type:varchar(64);index" json:"category"`
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	OriginalPrice *Money    `gorm:"type:decimal(20,2)" json:"originalPrice,omitempty"`
	Discount      Money     `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
	Stock         int       `gorm:"not null;default:0" json:"stock"`
	Description   string    `gorm:"type:text" json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 分配商品 ID
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
