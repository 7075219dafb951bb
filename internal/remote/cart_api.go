package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// CartAPI 远端购物车集合适配器
type CartAPI struct {
	client   *Client
	endpoint string
}

// NewCartAPI 创建购物车集合适配器，baseURL 为集合所在项目地址
func NewCartAPI(client *Client, baseURL string) *CartAPI {
	return &CartAPI{client: client, endpoint: joinURL(baseURL, constants.CollectionCart)}
}

// FetchAll 拉取用户全部远端行，404 视为空购物车
func (a *CartAPI) FetchAll(ctx context.Context, userID string) ([]cart.Line, error) {
	var rows []models.CartRow
	err := a.client.do(ctx, http.MethodGet, a.endpoint+"?userId="+url.QueryEscape(userID), nil, &rows)
	if err != nil {
		if IsNotFound(err) {
			return []cart.Line{}, nil
		}
		return nil, newSyncError("fetch", "", err)
	}
	lines := make([]cart.Line, 0, len(rows))
	for _, row := range rows {
		// 过滤可能的模糊匹配结果
		if row.UserID != "" && row.UserID != userID {
			continue
		}
		lines = append(lines, RowToLine(row))
	}
	return lines, nil
}

// Create 新建远端行，返回带 RemoteID 的行
func (a *CartAPI) Create(ctx context.Context, userID string, line cart.Line) (cart.Line, error) {
	var created models.CartRow
	if err := a.client.do(ctx, http.MethodPost, a.endpoint, newCartRowBody(LineToRow(userID, line)), &created); err != nil {
		return cart.Line{}, newSyncError("create", "", err)
	}
	if created.ID == "" {
		return cart.Line{}, &SyncError{Op: "create", Err: ErrMissingRemoteID}
	}
	return line.WithRemoteID(created.ID), nil
}

// Update 覆盖远端行的可变字段；行已不存在时返回 ErrStaleReference，不自动重试
func (a *CartAPI) Update(ctx context.Context, userID, remoteID string, line cart.Line) (cart.Line, error) {
	body := newCartRowBody(LineToRow(userID, line))
	body.ID = remoteID
	if err := a.client.do(ctx, http.MethodPut, joinURL(a.endpoint, url.PathEscape(remoteID)), body, nil); err != nil {
		if IsNotFound(err) {
			syncErr := newSyncError("update", remoteID, ErrStaleReference)
			syncErr.Status = http.StatusNotFound
			return cart.Line{}, syncErr
		}
		return cart.Line{}, newSyncError("update", remoteID, err)
	}
	return line.WithRemoteID(remoteID), nil
}

// Delete 删除远端行，已删除的行视为成功
func (a *CartAPI) Delete(ctx context.Context, remoteID string) error {
	if err := a.client.do(ctx, http.MethodDelete, joinURL(a.endpoint, url.PathEscape(remoteID)), nil, nil); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return newSyncError("delete", remoteID, err)
	}
	return nil
}

// RowToLine 线上行转领域行
func RowToLine(row models.CartRow) cart.Line {
	return cart.Line{
		RemoteID:        row.ID,
		ProductID:       row.ProductID,
		ProductName:     row.ProductName,
		ProductImage:    row.ProductImage,
		UnitPrice:       row.ProductPrice.Decimal,
		DiscountPercent: row.ProductDiscount.Decimal,
		Quantity:        row.Quantity,
		Subtotal:        row.Subtotal.Decimal,
	}
}

// LineToRow 领域行转线上行（不含 id 与 createdAt）
func LineToRow(userID string, line cart.Line) models.CartRow {
	return models.CartRow{
		UserID:          userID,
		ProductID:       line.ProductID,
		ProductName:     line.ProductName,
		ProductImage:    line.ProductImage,
		ProductPrice:    models.NewMoneyFromDecimal(line.UnitPrice),
		ProductDiscount: models.NewMoneyFromDecimal(line.DiscountPercent),
		Quantity:        line.Quantity,
		Subtotal:        models.NewMoneyFromDecimal(line.Subtotal),
	}
}

// cartRowBody 写请求体，id 与 createdAt 由远端维护
type cartRowBody struct {
	ID              string       `json:"id,omitempty"`
	UserID          string       `json:"userId"`
	ProductID       string       `json:"productId"`
	ProductName     string       `json:"productName"`
	ProductImage    string       `json:"productImage"`
	ProductPrice    models.Money `json:"productPrice"`
	ProductDiscount models.Money `json:"productDiscount"`
	Quantity        int          `json:"quantity"`
	Subtotal        models.Money `json:"subtotal"`
}

func newCartRowBody(row models.CartRow) cartRowBody {
	return cartRowBody{
		UserID:          row.UserID,
		ProductID:       row.ProductID,
		ProductName:     row.ProductName,
		ProductImage:    row.ProductImage,
		ProductPrice:    row.ProductPrice,
		ProductDiscount: row.ProductDiscount,
		Quantity:        row.Quantity,
		Subtotal:        row.Subtotal,
	}
}
