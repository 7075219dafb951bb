package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartSweep 清空未收敛时的延迟补偿清理任务
	TaskCartSweep = constants.TaskCartSweep
	// TaskOrderPlaced 下单完成任务
	TaskOrderPlaced = constants.TaskOrderPlaced
)

// CartSweepPayload 购物车补偿清理任务载荷
type CartSweepPayload struct {
	UserID string `json:"user_id"`
}

// OrderPlacedPayload 下单完成任务载荷
type OrderPlacedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Total   string `json:"total"`
}

// NewCartSweepTask 创建购物车补偿清理任务
func NewCartSweepTask(payload CartSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartSweep, body), nil
}

// NewOrderPlacedTask 创建下单完成任务
func NewOrderPlacedTask(payload OrderPlacedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPlaced, body), nil
}
