package repository

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository = CollectionRepository[models.User]

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormCollectionRepository[models.User] {
	return newCollectionRepository[models.User](db, constants.CollectionUsers, Columns{
		"name":      "name",
		"email":     "email",
		"phone":     "phone",
		"createdAt": "created_at",
	})
}
