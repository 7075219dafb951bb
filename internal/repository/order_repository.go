package repository

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository = CollectionRepository[models.Order]

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormCollectionRepository[models.Order] {
	return newCollectionRepository[models.Order](db, constants.CollectionOrders, Columns{
		"userId":    "user_id",
		"status":    "status",
		"orderDate": "order_date",
		"total":     "total",
		"createdAt": "created_at",
	})
}
