package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 资料修改请求，未提供的字段不修改
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// Login 邮箱密码登录，返回令牌与已加载的购物车
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Email and password are required", nil)
		return
	}

	result, err := h.AuthService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Login successful", result)
}

// Logout 退出登录并丢弃购物车会话
func (h *Handler) Logout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	h.AuthService.Logout(uid)
	response.SuccessWithMsg(c, "Logged out", nil)
}

// GetCurrentUser 当前用户资料
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":       user,
		"cart_count": h.CartService.Count(uid),
	})
}

// UpdateProfile 修改个人资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request body", nil)
		return
	}
	user, err := h.AuthService.UpdateProfile(c.Request.Context(), uid, service.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}
	h.Notifier.Success(uid, "Profile updated successfully")
	response.SuccessWithMsg(c, "Profile updated successfully", user)
}
