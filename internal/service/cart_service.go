package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/notify"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/remote"

	"go.uber.org/zap"
)

// CartRemote 远端购物车集合
type CartRemote interface {
	FetchAll(ctx context.Context, userID string) ([]cart.Line, error)
	Create(ctx context.Context, userID string, line cart.Line) (cart.Line, error)
	Update(ctx context.Context, userID, remoteID string, line cart.Line) (cart.Line, error)
	Delete(ctx context.Context, remoteID string) error
}

// CartView 购物车响应
type CartView struct {
	Lines   []cart.Line     `json:"lines"`
	Summary pricing.Summary `json:"summary"`
}

// CartService 购物车乐观更新服务
// 同一购物车的变更串行执行，失败时整体回滚到变更前的快照
type CartService struct {
	remote     CartRemote
	catalog    *CatalogService
	sessions   *SessionRegistry
	reconciler *ClearCartReconciler
	rules      pricing.Rules
	notifier   notify.Sink
	locks      *keyedMutex
	log        *zap.SugaredLogger
}

// NewCartService 创建购物车服务
func NewCartService(remote CartRemote, catalog *CatalogService, sessions *SessionRegistry, reconciler *ClearCartReconciler, rules pricing.Rules, notifier notify.Sink) *CartService {
	if notifier == nil {
		notifier = nopSink{}
	}
	return &CartService{
		remote:     remote,
		catalog:    catalog,
		sessions:   sessions,
		reconciler: reconciler,
		rules:      rules,
		notifier:   notifier,
		locks:      newKeyedMutex(),
		log:        logger.Component("cart"),
	}
}

// Rules 折扣规则
func (s *CartService) Rules() pricing.Rules {
	return s.rules
}

// Load 从远端加载购物车并整体替换本地快照
// 远端无记录时为空购物车；加载失败同样回落为空购物车
func (s *CartService) Load(ctx context.Context, userID string) (cart.Snapshot, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return cart.Snapshot{}, ErrNoActiveCart
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	lines, err := s.remote.FetchAll(ctx, userID)
	if err != nil {
		s.log.Warnw("cart_load_failed", "user_id", userID, "error", err)
		session.Store.Reset()
		return cart.Snapshot{}, err
	}
	session.Store.Replace(cart.NewSnapshot(lines...))
	s.log.Debugw("cart_loaded", "user_id", userID, "lines", len(lines))
	return session.Store.Snapshot(), nil
}

// Snapshot 当前快照
func (s *CartService) Snapshot(userID string) (cart.Snapshot, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return cart.Snapshot{}, ErrNoActiveCart
	}
	return session.Store.Snapshot(), nil
}

// View 当前购物车与订单汇总
func (s *CartService) View(userID string) (*CartView, error) {
	snapshot, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(snapshot), nil
}

func (s *CartService) viewOf(snapshot cart.Snapshot) *CartView {
	return &CartView{Lines: snapshot.Lines(), Summary: s.rules.Summarize(snapshot)}
}

// Count 购物车商品件数
func (s *CartService) Count(userID string) int {
	snapshot, err := s.Snapshot(userID)
	if err != nil {
		return 0
	}
	return snapshot.ItemCount()
}

// AddProduct 按商品 ID 加购：读取当前商品信息并在购物车锁内校验库存
func (s *CartService) AddProduct(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, ok := s.sessions.Get(userID); !ok {
		return nil, ErrNoActiveCart
	}
	ctx = context.WithoutCancel(ctx)
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	var view *CartView
	err = s.withLock(userID, func(session *Session) error {
		if err := s.checkStock(userID, session.Store.Snapshot(), *product, quantity); err != nil {
			return err
		}
		var addErr error
		view, addErr = s.addLocked(ctx, userID, session.Store, *product, quantity)
		return addErr
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// checkStock 购物车已有数量加本次数量不得超过库存
func (s *CartService) checkStock(userID string, snapshot cart.Snapshot, product models.Product, quantity int) error {
	inCart := 0
	if line, ok := snapshot.Find(product.ID); ok {
		inCart = line.Quantity
	}
	if product.Stock >= inCart+quantity {
		return nil
	}
	available := product.Stock - inCart
	if available < 0 {
		available = 0
	}
	stockErr := &StockError{ProductID: product.ID, Name: product.Name, Available: available}
	s.notifier.Notify(userID, constants.NotificationWarning, stockErr.Error())
	return stockErr
}

// AddToCart 加购：已在购物车中的商品合并数量并更新远端行，否则新建远端行
func (s *CartService) AddToCart(ctx context.Context, userID string, product models.Product, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	ctx = context.WithoutCancel(ctx)
	var view *CartView
	err := s.withLock(userID, func(session *Session) error {
		var addErr error
		view, addErr = s.addLocked(ctx, userID, session.Store, product, quantity)
		return addErr
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *CartService) addLocked(ctx context.Context, userID string, store *cart.Store, product models.Product, quantity int) (*CartView, error) {
	before := store.Snapshot()

	if existing, ok := before.Find(product.ID); ok {
		if !existing.Synced() {
			return nil, ErrCartLineNotSynced
		}
		merged := existing.WithQuantity(existing.Quantity + quantity)
		store.UpsertLine(merged)
		if _, err := s.remote.Update(ctx, userID, existing.RemoteID, merged); err != nil {
			return nil, s.rollback(userID, store, before, "cart_add_failed_reverted", "Failed to add item to cart", err)
		}
		s.log.Infow("cart_line_merged", "user_id", userID, "product_id", product.ID, "quantity", merged.Quantity)
		s.notifier.Notify(userID, constants.NotificationSuccess, fmt.Sprintf("%s added to cart", product.Name))
		return s.viewOf(store.Snapshot()), nil
	}

	line := lineFromProduct(product, quantity)
	store.UpsertLine(line)
	created, err := s.remote.Create(ctx, userID, line)
	if err != nil {
		return nil, s.rollback(userID, store, before, "cart_add_failed_reverted", "Failed to add item to cart", err)
	}
	store.UpsertLine(line.WithRemoteID(created.RemoteID))
	s.log.Infow("cart_line_created", "user_id", userID, "product_id", product.ID, "remote_id", created.RemoteID, "quantity", quantity)
	s.notifier.Notify(userID, constants.NotificationSuccess, fmt.Sprintf("%s added to cart", product.Name))
	return s.viewOf(store.Snapshot()), nil
}

// UpdateQuantity 修改商品数量
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, ErrNoActiveCart
	}
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(userID)
	defer unlock()

	store := session.Store
	before := store.Snapshot()
	existing, ok := before.Find(productID)
	if !ok {
		return nil, ErrCartLineNotFound
	}
	if !existing.Synced() {
		return nil, ErrCartLineNotSynced
	}

	updated := existing.WithQuantity(quantity)
	store.UpsertLine(updated)
	if _, err := s.remote.Update(ctx, userID, existing.RemoteID, updated); err != nil {
		return nil, s.rollback(userID, store, before, "cart_quantity_failed_reverted", "Failed to update quantity", err)
	}
	s.log.Infow("cart_quantity_updated", "user_id", userID, "product_id", productID, "quantity", quantity)
	return s.viewOf(store.Snapshot()), nil
}

// RemoveFromCart 移除商品
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) (*CartView, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, ErrNoActiveCart
	}
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(userID)
	defer unlock()

	store := session.Store
	before := store.Snapshot()
	existing, ok := before.Find(productID)
	if !ok {
		return nil, ErrCartLineNotFound
	}
	if !existing.Synced() {
		return nil, ErrCartLineNotSynced
	}

	store.RemoveLine(productID)
	if err := s.remote.Delete(ctx, existing.RemoteID); err != nil {
		return nil, s.rollback(userID, store, before, "cart_remove_failed_reverted", "Failed to remove item from cart", err)
	}
	s.log.Infow("cart_line_removed", "user_id", userID, "product_id", productID, "remote_id", existing.RemoteID)
	s.notifier.Notify(userID, constants.NotificationSuccess, fmt.Sprintf("%s removed from cart", existing.ProductName))
	return s.viewOf(store.Snapshot()), nil
}

// Clear 清空购物车（远端逐行删除直至收敛）
func (s *CartService) Clear(ctx context.Context, userID string) (ClearResult, error) {
	var result ClearResult
	err := s.withLock(userID, func(session *Session) error {
		result = s.clearLocked(ctx, userID, session)
		return nil
	})
	return result, err
}

// clearLocked 调用方须已持有该用户的购物车锁
func (s *CartService) clearLocked(ctx context.Context, userID string, session *Session) ClearResult {
	result := s.reconciler.Run(ctx, userID, session.Store)
	if result.Forced {
		s.notifier.Notify(userID, constants.NotificationWarning, "Cart was reset locally but some items could not be removed")
	}
	return result
}

// withLock 持有用户购物车锁执行 fn，同一购物车的变更与下单互斥
func (s *CartService) withLock(userID string, fn func(session *Session) error) error {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return ErrNoActiveCart
	}
	unlock := s.locks.Lock(userID)
	defer unlock()
	return fn(session)
}

// rollback 恢复变更前的完整快照并发出失败提示
func (s *CartService) rollback(userID string, store *cart.Store, before cart.Snapshot, event, message string, err error) error {
	store.Replace(before)
	fields := []interface{}{"user_id", userID, "error", err}
	var syncErr *remote.SyncError
	if errors.As(err, &syncErr) {
		fields = append(fields, "op", syncErr.Op, "remote_id", syncErr.RemoteID, "status", syncErr.Status)
	}
	s.log.Warnw(event, fields...)
	s.notifier.Notify(userID, constants.NotificationError, message)
	return err
}

func lineFromProduct(product models.Product, quantity int) cart.Line {
	return cart.Line{
		ProductID:       product.ID,
		ProductName:     product.Name,
		ProductImage:    product.Image,
		UnitPrice:       product.Price.Decimal,
		DiscountPercent: product.Discount.Decimal,
	}.WithQuantity(quantity)
}

type nopSink struct{}

func (nopSink) Notify(string, string, string) {}
