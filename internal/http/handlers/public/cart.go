package public

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// UpdateCartItemRequest 修改数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 获取购物车与订单汇总，refresh=1 时先从远端重新加载
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if c.Query("refresh") == "1" {
		if _, err := h.CartService.Load(c.Request.Context(), uid); err != nil {
			respondCartError(c, err)
			return
		}
	}
	view, err := h.CartService.View(uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// GetCartCount 购物车商品件数
func (h *Handler) GetCartCount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{"count": h.CartService.Count(uid)})
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Product is required", nil)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	view, err := h.CartService.AddProduct(c.Request.Context(), uid, req.ProductID, quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车商品数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request body", nil)
		return
	}
	view, err := h.CartService.UpdateQuantity(c.Request.Context(), uid, c.Param("product_id"), req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 移除购物车商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.RemoveFromCart(c.Request.Context(), uid, c.Param("product_id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.CartService.Clear(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	view, err := h.CartService.View(uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{
		"clear": result,
		"cart":  view,
	})
}

// ValidateCart 结算前库存校验
func (h *Handler) ValidateCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	check, err := h.CheckoutService.ValidateStock(c.Request.Context(), uid)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, check)
}
