package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClearResult 清空购物车结果
// Attempts 为已执行的删除批次数；Forced 表示本地被强制清空而远端未确认为空，
// 此时 Remaining 为最后一次拉取到的远端行数
type ClearResult struct {
	Attempts  int   `json:"attempts"`
	Remaining int   `json:"remaining"`
	Forced    bool  `json:"forced"`
	Err       error `json:"-"`
}

// Converged 远端已确认为空
func (r ClearResult) Converged() bool {
	return !r.Forced
}

// ClearCartReconciler 逐轮删除远端行直到远端为空或达到尝试上限
// 每轮：拉取 -> 并行删除（单行失败忽略）-> 等待落定 -> 再次拉取校验
type ClearCartReconciler struct {
	remote      CartRemote
	maxAttempts int
	settleDelay time.Duration
	concurrency int
	sleep       func(d time.Duration)
	log         *zap.SugaredLogger
}

// ReconcilerOptions 对账参数
type ReconcilerOptions struct {
	MaxAttempts int
	SettleDelay time.Duration
	Concurrency int
}

// NewClearCartReconciler 创建对账器
func NewClearCartReconciler(remote CartRemote, options ReconcilerOptions) *ClearCartReconciler {
	maxAttempts := options.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = constants.DefaultClearMaxAttempts
	}
	settle := options.SettleDelay
	if settle < 0 {
		settle = time.Duration(constants.DefaultSettleDelayMS) * time.Millisecond
	}
	return &ClearCartReconciler{
		remote:      remote,
		maxAttempts: maxAttempts,
		settleDelay: settle,
		concurrency: options.Concurrency,
		sleep:       time.Sleep,
		log:         logger.Component("reconciler"),
	}
}

// Run 驱动远端集合清空，并在任何结局下将本地快照置空
// 调用方取消不会中断对账，唯一的上限是尝试次数
func (r *ClearCartReconciler) Run(ctx context.Context, userID string, store *cart.Store) ClearResult {
	ctx = context.WithoutCancel(ctx)
	attempt := 0
	for {
		lines, err := r.remote.FetchAll(ctx, userID)
		if err != nil {
			r.log.Errorw("cart_clear_fetch_failed", "user_id", userID, "attempt", attempt+1, "error", err)
			store.Reset()
			return ClearResult{Attempts: attempt, Forced: true, Err: err}
		}
		r.log.Debugw("cart_clear_attempt", "user_id", userID, "attempt", attempt+1, "rows", len(lines))

		if len(lines) == 0 {
			store.Reset()
			r.log.Infow("cart_clear_converged", "user_id", userID, "attempts", attempt)
			return ClearResult{Attempts: attempt}
		}
		if attempt >= r.maxAttempts {
			store.Reset()
			r.log.Errorw("cart_clear_gave_up", "user_id", userID, "attempts", attempt, "remaining", len(lines))
			return ClearResult{Attempts: attempt, Remaining: len(lines), Forced: true}
		}

		r.deleteBatch(ctx, lines)
		if r.settleDelay > 0 {
			r.sleep(r.settleDelay)
		}
		attempt++
	}
}

// deleteBatch 并行删除整批行，等待全部结束；单行失败只记录日志
func (r *ClearCartReconciler) deleteBatch(ctx context.Context, lines []cart.Line) {
	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for _, line := range lines {
		remoteID := line.RemoteID
		if remoteID == "" {
			continue
		}
		g.Go(func() error {
			if err := r.remote.Delete(ctx, remoteID); err != nil {
				r.log.Warnw("cart_clear_delete_failed", "remote_id", remoteID, "error", err)
				return nil
			}
			r.log.Debugw("cart_clear_deleted", "remote_id", remoteID)
			return nil
		})
	}
	_ = g.Wait()
}
