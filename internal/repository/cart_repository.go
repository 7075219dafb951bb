package repository

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CartRowRepository 购物车行数据访问接口
type CartRowRepository = CollectionRepository[models.CartRow]

// NewCartRowRepository 创建购物车行仓库
func NewCartRowRepository(db *gorm.DB) *GormCollectionRepository[models.CartRow] {
	return newCollectionRepository[models.CartRow](db, constants.CollectionCart, Columns{
		"userId":      "user_id",
		"productId":   "product_id",
		"productName": "product_name",
		"createdAt":   "created_at",
	})
}
