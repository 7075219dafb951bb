package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/notify"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/remote"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// OrderRemote 远端订单集合
type OrderRemote interface {
	Create(ctx context.Context, order models.Order) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
}

// TaskEnqueuer 异步任务投递
type TaskEnqueuer interface {
	EnqueueCartSweep(userID string) error
	EnqueueOrderPlaced(orderID, userID string, total decimal.Decimal) error
}

// CheckoutDetails 收货与支付信息
type CheckoutDetails struct {
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Address     string `json:"address"`
	PaymentMode string `json:"paymentMode"`
}

// Normalize 去除首尾空白，支付方式缺省为货到付款
func (d CheckoutDetails) Normalize() CheckoutDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Mobile = strings.TrimSpace(d.Mobile)
	d.Address = strings.TrimSpace(d.Address)
	d.PaymentMode = strings.ToLower(strings.TrimSpace(d.PaymentMode))
	if d.PaymentMode == "" {
		d.PaymentMode = constants.PaymentModeCOD
	}
	return d
}

// Validate 校验结算表单
func (d CheckoutDetails) Validate() error {
	switch {
	case d.Name == "":
		return &FieldError{Field: "name", Message: "Name is required"}
	case utf8.RuneCountInString(d.Name) < 3:
		return &FieldError{Field: "name", Message: "Name is too short"}
	case d.Mobile == "":
		return &FieldError{Field: "mobile", Message: "Mobile is required"}
	case !mobilePattern.MatchString(d.Mobile):
		return &FieldError{Field: "mobile", Message: "Enter a valid 10-digit mobile number"}
	case d.Address == "":
		return &FieldError{Field: "address", Message: "Address is required"}
	case utf8.RuneCountInString(d.Address) < 10:
		return &FieldError{Field: "address", Message: "Address is too short"}
	case !constants.IsValidPaymentMode(d.PaymentMode):
		return &FieldError{Field: "paymentMode", Message: "Payment mode is invalid"}
	}
	return nil
}

// OrderItemProduct 订单行中的商品快照
type OrderItemProduct struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Image    string       `json:"image"`
	Price    models.Money `json:"price"`
	Discount models.Money `json:"discount"`
}

// OrderItem 订单行（以 JSON 字符串存放在订单的 items 字段）
type OrderItem struct {
	CartItemID string           `json:"cartItemId,omitempty"`
	Product    OrderItemProduct `json:"product"`
	Quantity   int              `json:"quantity"`
	Subtotal   models.Money     `json:"subtotal"`
}

// OrderView 订单响应
type OrderView struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Items             []OrderItem     `json:"items"`
	ItemCount         int             `json:"item_count"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ProductDiscount   decimal.Decimal `json:"product_discount"`
	CartLevelDiscount decimal.Decimal `json:"cart_level_discount"`
	Total             decimal.Decimal `json:"total"`
	UserDetails       CheckoutDetails `json:"user_details"`
	OrderDate         time.Time       `json:"order_date"`
	Status            string          `json:"status"`
}

// StockCheck 库存校验结果
type StockCheck struct {
	Valid           bool     `json:"valid"`
	OutOfStockItems []string `json:"out_of_stock_items"`
}

// PlaceOrderResult 下单结果
type PlaceOrderResult struct {
	Order   *OrderView  `json:"order"`
	Clear   ClearResult `json:"clear"`
	Warning string      `json:"warning,omitempty"`
}

// CheckoutService 结算与订单服务
type CheckoutService struct {
	orders   OrderRemote
	catalog  *CatalogService
	carts    *CartService
	enqueuer TaskEnqueuer
	notifier notify.Sink
	rules    pricing.Rules
	log      *zap.SugaredLogger
}

// NewCheckoutService 创建结算服务，enqueuer 可为 nil
func NewCheckoutService(orders OrderRemote, catalog *CatalogService, carts *CartService, enqueuer TaskEnqueuer, notifier notify.Sink) *CheckoutService {
	if notifier == nil {
		notifier = nopSink{}
	}
	return &CheckoutService{
		orders:   orders,
		catalog:  catalog,
		carts:    carts,
		enqueuer: enqueuer,
		notifier: notifier,
		rules:    carts.Rules(),
		log:      logger.Component("checkout"),
	}
}

// ValidateStock 校验购物车每个商品的最新库存，返回缺货商品名称
func (s *CheckoutService) ValidateStock(ctx context.Context, userID string) (*StockCheck, error) {
	snapshot, err := s.carts.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	check, _, err := s.validateStock(ctx, snapshot)
	return check, err
}

func (s *CheckoutService) validateStock(ctx context.Context, snapshot cart.Snapshot) (*StockCheck, map[string]models.Product, error) {
	products, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	outOfStock := make([]string, 0)
	for _, line := range snapshot.Lines() {
		latest, ok := byID[line.ProductID]
		if !ok || latest.Stock < line.Quantity {
			outOfStock = append(outOfStock, line.ProductName)
		}
	}
	return &StockCheck{Valid: len(outOfStock) == 0, OutOfStockItems: outOfStock}, byID, nil
}

// PlaceOrder 下单：校验 -> 创建订单 -> 扣减库存 -> 清空购物车
// 从读取快照到清空购物车全程持有购物车锁，期间的加购会排在下单之后
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, details CheckoutDetails) (*PlaceOrderResult, error) {
	details = details.Normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	var result *PlaceOrderResult
	err := s.carts.withLock(userID, func(session *Session) error {
		var placeErr error
		result, placeErr = s.placeLocked(ctx, userID, session, details)
		return placeErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CheckoutService) placeLocked(ctx context.Context, userID string, session *Session, details CheckoutDetails) (*PlaceOrderResult, error) {
	snapshot := session.Store.Snapshot()
	if snapshot.Empty() {
		return nil, ErrEmptyCart
	}

	check, products, err := s.validateStock(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		s.notifier.Notify(userID, constants.NotificationWarning, "Some items in your cart are out of stock")
		return nil, &OutOfStockError{Items: check.OutOfStockItems}
	}

	summary := s.rules.Summarize(snapshot)
	order, err := buildOrder(userID, snapshot, summary, details)
	if err != nil {
		return nil, err
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.log.Errorw("order_create_failed", "user_id", userID, "error", err)
		s.notifier.Notify(userID, constants.NotificationError, "Failed to place order")
		return nil, err
	}
	s.log.Infow("order_created", "user_id", userID, "order_id", created.ID, "total", summary.Total.String())

	s.decrementStock(ctx, snapshot, products)

	cleared := s.carts.clearLocked(ctx, userID, session)
	result := &PlaceOrderResult{Clear: cleared}
	if cleared.Forced {
		result.Warning = "Order placed but failed to clear cart."
		s.scheduleSweep(userID)
		s.notifier.Notify(userID, constants.NotificationError, result.Warning)
	} else {
		s.notifier.Notify(userID, constants.NotificationSuccess, "Order placed successfully!")
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueOrderPlaced(created.ID, userID, summary.Total); err != nil {
			s.log.Warnw("order_placed_enqueue_failed", "order_id", created.ID, "error", err)
		}
	}

	view, err := toOrderView(*created)
	if err != nil {
		return nil, err
	}
	result.Order = view
	return result, nil
}

func (s *CheckoutService) scheduleSweep(userID string) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueCartSweep(userID); err != nil {
		s.log.Warnw("cart_sweep_enqueue_failed", "user_id", userID, "error", err)
	}
}

// decrementStock 按下单数量扣减库存，失败只记录日志
func (s *CheckoutService) decrementStock(ctx context.Context, snapshot cart.Snapshot, products map[string]models.Product) {
	for _, line := range snapshot.Lines() {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		if _, err := s.catalog.UpdateStock(ctx, product.ID, product.Stock-line.Quantity); err != nil {
			s.log.Warnw("product_stock_update_failed", "product_id", product.ID, "error", err)
		}
	}
}

// ListOrders 用户订单，按下单时间倒序；status 为空时不过滤
func (s *CheckoutService) ListOrders(ctx context.Context, userID, status string) ([]OrderView, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !constants.IsValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		if order.UserID != userID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		view, err := toOrderView(order)
		if err != nil {
			s.log.Warnw("order_decode_failed", "order_id", order.ID, "error", err)
			continue
		}
		views = append(views, *view)
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].OrderDate.After(views[j].OrderDate)
	})
	return views, nil
}

// GetOrder 订单详情，只能查看自己的订单
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*OrderView, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return toOrderView(*order)
}

// UpdateOrderStatus 更新订单状态
func (s *CheckoutService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*OrderView, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !constants.IsValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}
	order, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderView(*order)
}

func buildOrder(userID string, snapshot cart.Snapshot, summary pricing.Summary, details CheckoutDetails) (models.Order, error) {
	items := make([]OrderItem, 0, snapshot.Len())
	for _, line := range snapshot.Lines() {
		items = append(items, OrderItem{
			CartItemID: line.RemoteID,
			Product: OrderItemProduct{
				ID:       line.ProductID,
				Name:     line.ProductName,
				Image:    line.ProductImage,
				Price:    models.NewMoneyFromDecimal(line.UnitPrice),
				Discount: models.NewMoneyFromDecimal(line.DiscountPercent),
			},
			Quantity: line.Quantity,
			Subtotal: models.NewMoneyFromDecimal(line.Subtotal),
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return models.Order{}, err
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return models.Order{}, err
	}
	return models.Order{
		UserID:            userID,
		Items:             string(itemsJSON),
		Subtotal:          models.NewMoneyFromDecimal(summary.Subtotal),
		ProductDiscount:   models.NewMoneyFromDecimal(summary.ProductDiscount),
		CartLevelDiscount: models.NewMoneyFromDecimal(summary.CartDiscount),
		Total:             models.NewMoneyFromDecimal(summary.Total),
		UserDetails:       string(detailsJSON),
		OrderDate:         time.Now(),
		Status:            constants.OrderStatusPending,
	}, nil
}

func toOrderView(order models.Order) (*OrderView, error) {
	view := &OrderView{
		ID:                order.ID,
		UserID:            order.UserID,
		Items:             []OrderItem{},
		Subtotal:          order.Subtotal.Decimal,
		ProductDiscount:   order.ProductDiscount.Decimal,
		CartLevelDiscount: order.CartLevelDiscount.Decimal,
		Total:             order.Total.Decimal,
		OrderDate:         order.OrderDate,
		Status:            order.Status,
	}
	if strings.TrimSpace(order.Items) != "" {
		if err := json.Unmarshal([]byte(order.Items), &view.Items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOrderMalformed, err)
		}
	}
	if strings.TrimSpace(order.UserDetails) != "" {
		if err := json.Unmarshal([]byte(order.UserDetails), &view.UserDetails); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOrderMalformed, err)
		}
	}
	view.ItemCount = len(view.Items)
	return view, nil
}
