package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartSweep, c.handleCartSweep)
	mux.HandleFunc(queue.TaskOrderPlaced, c.handleOrderPlaced)
}

// handleCartSweep 对远端残留行再跑一次清空对账
// 本地会话早已置空，这里使用临时 Store，不影响在线会话
func (c *Consumer) handleCartSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_cart_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_sweep_unmarshal_failed", "error", err)
		return err
	}
	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		logger.Debugw("worker_cart_sweep_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.Reconciler == nil {
		logger.Warnw("worker_cart_sweep_skip_reconciler_nil", "user_id", userID)
		return nil
	}
	result := c.Reconciler.Run(ctx, userID, cart.NewStore())
	if result.Forced {
		logger.Warnw("worker_cart_sweep_incomplete",
			"user_id", userID,
			"attempts", result.Attempts,
			"remaining", result.Remaining,
			"error", result.Err,
		)
		return fmt.Errorf("cart sweep for user %s left %d rows", userID, result.Remaining)
	}
	logger.Infow("worker_cart_sweep_done", "user_id", userID, "attempts", result.Attempts)
	return nil
}

func (c *Consumer) handleOrderPlaced(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_order_placed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPlacedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_placed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == "" || payload.UserID == "" {
		logger.Debugw("worker_order_placed_skip_invalid_payload", "order_id", payload.OrderID, "user_id", payload.UserID)
		return nil
	}
	logger.Infow("worker_order_placed", "order_id", payload.OrderID, "user_id", payload.UserID, "total", payload.Total)
	if c.Notifier == nil {
		return nil
	}
	symbol := ""
	if c.Config != nil {
		symbol = c.Config.Pricing.CurrencySymbol
	}
	c.Notifier.Info(payload.UserID, fmt.Sprintf("Order #%s confirmed. Total %s%s", payload.OrderID, symbol, payload.Total))
	return nil
}
