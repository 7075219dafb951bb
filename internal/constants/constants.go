package constants

// 折扣档位常量
const (
	TierNone = "none"
	TierOne  = "tier1"
	TierTwo  = "tier2"
)

// 提示消息类型常量
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
	NotificationWarning = "warning"
	NotificationInfo    = "info"
)

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付方式常量（仅记录，不做支付处理）
const (
	PaymentModeCOD  = "cod"
	PaymentModeCard = "card"
	PaymentModeUPI  = "upi"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskCartSweep   = "cart:sweep"
	TaskOrderPlaced = "order:placed"
)

// 托管集合名称
const (
	CollectionCart     = "cart"
	CollectionProducts = "productdata"
	CollectionOrders   = "orders"
	CollectionUsers    = "users"
)

// 清空购物车对账默认值
const (
	DefaultClearMaxAttempts = 3
	DefaultSettleDelayMS    = 500
)

// IsValidOrderStatus 判断订单状态是否合法
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidPaymentMode 判断支付方式是否合法
func IsValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeCOD, PaymentModeCard, PaymentModeUPI:
		return true
	}
	return false
}
