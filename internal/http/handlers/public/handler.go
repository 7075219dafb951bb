package public

import "github.com/storefront-next/internal/provider"

// Handler 店铺前台接口处理器入口
// 说明：购物车、订单与个人资料接口均要求登录。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
