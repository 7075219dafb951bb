package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// ProductAPI 商品目录集合
type ProductAPI struct {
	client   *Client
	endpoint string
}

// NewProductAPI 创建商品目录适配器
func NewProductAPI(client *Client, baseURL string) *ProductAPI {
	return &ProductAPI{client: client, endpoint: joinURL(baseURL, constants.CollectionProducts)}
}

// List 全部商品
func (a *ProductAPI) List(ctx context.Context) ([]models.Product, error) {
	return a.list(ctx, a.endpoint)
}

// ListByCategory 按分类过滤，无结果时返回空列表
func (a *ProductAPI) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return a.list(ctx, a.endpoint+"?category="+url.QueryEscape(category))
}

func (a *ProductAPI) list(ctx context.Context, endpoint string) ([]models.Product, error) {
	var products []models.Product
	if err := a.client.do(ctx, http.MethodGet, endpoint, nil, &products); err != nil {
		if IsNotFound(err) {
			return []models.Product{}, nil
		}
		return nil, newSyncError("list_products", "", err)
	}
	return products, nil
}

// Get 商品详情，不存在时错误可用 IsNotFound 判断
func (a *ProductAPI) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := a.client.do(ctx, http.MethodGet, joinURL(a.endpoint, url.PathEscape(id)), nil, &product); err != nil {
		return nil, newSyncError("get_product", id, err)
	}
	return &product, nil
}

// UpdateStock 覆盖商品库存
func (a *ProductAPI) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	var product models.Product
	body := map[string]int{"stock": stock}
	if err := a.client.do(ctx, http.MethodPut, joinURL(a.endpoint, url.PathEscape(id)), body, &product); err != nil {
		return nil, newSyncError("update_stock", id, err)
	}
	return &product, nil
}
