package public

import (
	"strconv"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProducts 商品列表，支持关键字与分类筛选
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, err := h.CatalogService.List(c.Request.Context(), service.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	start, end := handlershared.PageBounds(len(products), page, pageSize)
	response.SuccessWithPage(c, products[start:end], response.NewPagination(page, pageSize, int64(len(products))))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.CatalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// GetCategories 商品分类
func (h *Handler) GetCategories(c *gin.Context) {
	products, err := h.CatalogService.Snapshot(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, service.Categories(products))
}
