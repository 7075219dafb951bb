package mockapi

import (
	"net/http"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/router"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter 本地模拟托管集合 API
// 购物车与商品挂在 /data 下，订单与用户挂在根路径，与两个托管项目的地址布局一致
func NewRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(router.RequestIDMiddleware())
	r.Use(router.LoggerMiddleware(logger.Z()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	data := r.Group("/data")
	newCollectionHandler(repository.NewCartRowRepository(db)).register(data)
	newCollectionHandler(repository.NewProductRepository(db)).register(data)

	root := r.Group("")
	newCollectionHandler(repository.NewOrderRepository(db)).register(root)
	newCollectionHandler(repository.NewUserRepository(db)).register(root)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, notFoundBody)
	})
	return r
}
