package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 下单请求（收货信息与支付方式）
type CreateOrderRequest struct {
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Address     string `json:"address"`
	PaymentMode string `json:"paymentMode"`
}

// UpdateOrderStatusRequest 订单状态修改请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder 以当前购物车下单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request body", nil)
		return
	}
	result, err := h.CheckoutService.PlaceOrder(c.Request.Context(), uid, service.CheckoutDetails{
		Name:        req.Name,
		Mobile:      req.Mobile,
		Address:     req.Address,
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	msg := "Order placed successfully!"
	if result.Warning != "" {
		msg = result.Warning
	}
	response.SuccessWithMsg(c, msg, result)
}

// ListOrders 订单列表，可按状态筛选
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orders, err := h.CheckoutService.ListOrders(c.Request.Context(), uid, c.Query("status"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	order, err := h.CheckoutService.GetOrder(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 修改自己订单的状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Status is required", nil)
		return
	}
	if _, err := h.CheckoutService.GetOrder(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondCheckoutError(c, err)
		return
	}
	order, err := h.CheckoutService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}
