package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// OrderAPI 订单集合
type OrderAPI struct {
	client   *Client
	endpoint string
}

// NewOrderAPI 创建订单适配器
func NewOrderAPI(client *Client, baseURL string) *OrderAPI {
	return &OrderAPI{client: client, endpoint: joinURL(baseURL, constants.CollectionOrders)}
}

// orderBody 创建订单请求体
type orderBody struct {
	UserID            string       `json:"userId"`
	Items             string       `json:"items"`
	Subtotal          models.Money `json:"subtotal"`
	ProductDiscount   models.Money `json:"productDiscount"`
	CartLevelDiscount models.Money `json:"cartLevelDiscount"`
	Total             models.Money `json:"total"`
	UserDetails       string       `json:"userDetails"`
	OrderDate         string       `json:"orderDate"`
	Status            string       `json:"status"`
}

// Create 创建订单
func (a *OrderAPI) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	body := orderBody{
		UserID:            order.UserID,
		Items:             order.Items,
		Subtotal:          order.Subtotal,
		ProductDiscount:   order.ProductDiscount,
		CartLevelDiscount: order.CartLevelDiscount,
		Total:             order.Total,
		UserDetails:       order.UserDetails,
		OrderDate:         order.OrderDate.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Status:            order.Status,
	}
	var created models.Order
	if err := a.client.do(ctx, http.MethodPost, a.endpoint, body, &created); err != nil {
		return nil, newSyncError("create_order", "", err)
	}
	return &created, nil
}

// ListByUser 用户订单，404 视为无订单
func (a *OrderAPI) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := a.client.do(ctx, http.MethodGet, a.endpoint+"?userId="+url.QueryEscape(userID), nil, &orders); err != nil {
		if IsNotFound(err) {
			return []models.Order{}, nil
		}
		return nil, newSyncError("list_orders", "", err)
	}
	return orders, nil
}

// Get 订单详情
func (a *OrderAPI) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := a.client.do(ctx, http.MethodGet, joinURL(a.endpoint, url.PathEscape(id)), nil, &order); err != nil {
		return nil, newSyncError("get_order", id, err)
	}
	return &order, nil
}

// UpdateStatus 局部更新订单状态
func (a *OrderAPI) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	var order models.Order
	body := map[string]string{"status": status}
	if err := a.client.do(ctx, http.MethodPatch, joinURL(a.endpoint, url.PathEscape(id)), body, &order); err != nil {
		return nil, newSyncError("update_order_status", id, err)
	}
	return &order, nil
}
