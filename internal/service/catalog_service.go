package service

import (
	"context"
	"sort"
	"strings"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/remote"

	"golang.org/x/sync/singleflight"
)

// ProductSource 商品目录来源
type ProductSource interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error)
}

// ProductFilter 商品筛选条件
type ProductFilter struct {
	Query    string
	Category string
}

// CatalogService 商品目录服务
// 并发的相同读取请求合并为一次远端调用
type CatalogService struct {
	source ProductSource
	group  singleflight.Group
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(source ProductSource) *CatalogService {
	return &CatalogService{source: source}
}

// List 按分类与关键字筛选商品
func (s *CatalogService) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	category := strings.TrimSpace(filter.Category)
	key := "list"
	if category != "" {
		key = "category:" + strings.ToLower(category)
	}
	// 合并后的调用由所有等待者共享，不随首个调用方取消
	shared := context.WithoutCancel(ctx)
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		if category != "" {
			return s.source.ListByCategory(shared, category)
		}
		return s.source.List(shared)
	})
	if err != nil {
		logger.Warnw("catalog_list_failed", "category", category, "error", err)
		return nil, ErrCatalogUnavailable
	}
	products := value.([]models.Product)
	return Search(products, filter.Query), nil
}

// Get 商品详情
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProductNotFound
	}
	shared := context.WithoutCancel(ctx)
	value, err, _ := s.group.Do("product:"+id, func() (interface{}, error) {
		return s.source.Get(shared, id)
	})
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		logger.Warnw("catalog_get_failed", "product_id", id, "error", err)
		return nil, ErrCatalogUnavailable
	}
	product := *value.(*models.Product)
	return &product, nil
}

// Snapshot 全量商品（库存校验使用，不做筛选）
func (s *CatalogService) Snapshot(ctx context.Context) ([]models.Product, error) {
	return s.List(ctx, ProductFilter{})
}

// UpdateStock 覆盖库存
func (s *CatalogService) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	if stock < 0 {
		stock = 0
	}
	product, err := s.source.UpdateStock(ctx, id, stock)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.group.Forget("product:" + id)
	return product, nil
}

// Categories 商品分类列表
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		category := strings.TrimSpace(p.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Search 名称/分类/描述的大小写不敏感子串匹配，保持原有顺序
func Search(products []models.Product, query string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]models.Product(nil), products...)
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Category), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			out = append(out, p)
		}
	}
	return out
}
