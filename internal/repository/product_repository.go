package repository

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository = CollectionRepository[models.Product]

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormCollectionRepository[models.Product] {
	return newCollectionRepository[models.Product](db, constants.CollectionProducts, Columns{
		"name":      "name",
		"category":  "category",
		"price":     "price",
		"stock":     "stock",
		"createdAt": "created_at",
	})
}
