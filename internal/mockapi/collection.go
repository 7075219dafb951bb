package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// notFoundBody 托管 API 的 404 响应体
const notFoundBody = "Not found"

// 列表查询中的保留参数，其余参数均视为字段过滤
var reservedQueryKeys = map[string]struct{}{
	"page":   {},
	"limit":  {},
	"sortBy": {},
	"order":  {},
}

// readOnlyFields 由服务端维护的字段，请求体中的值被忽略
var readOnlyFields = []string{"id", "createdAt"}

// collectionHandler 单个集合的 REST 处理器
type collectionHandler[T any] struct {
	repo repository.CollectionRepository[T]
}

func newCollectionHandler[T any](repo repository.CollectionRepository[T]) *collectionHandler[T] {
	return &collectionHandler[T]{repo: repo}
}

// register 挂载 GET/POST /<c> 与 GET/PUT/PATCH/DELETE /<c>/:id
func (h *collectionHandler[T]) register(group *gin.RouterGroup) {
	path := "/" + h.repo.Name()
	group.GET(path, h.list)
	group.POST(path, h.create)
	group.GET(path+"/:id", h.get)
	group.PUT(path+"/:id", h.update)
	group.PATCH(path+"/:id", h.update)
	group.DELETE(path+"/:id", h.delete)
}

func (h *collectionHandler[T]) list(c *gin.Context) {
	query, err := parseCollectionQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.repo.List(query)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownField) {
			c.JSON(http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(c, "mockapi_list_failed", err)
		return
	}
	if len(records) == 0 {
		if len(query.Filters) > 0 {
			c.JSON(http.StatusNotFound, notFoundBody)
			return
		}
		c.JSON(http.StatusOK, []T{})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *collectionHandler[T]) get(c *gin.Context) {
	record, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		h.internalError(c, "mockapi_get_failed", err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *collectionHandler[T]) create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, "Invalid body")
		return
	}
	record := new(T)
	if len(body) > 0 {
		if err := mergeBody(record, body); err != nil {
			c.JSON(http.StatusBadRequest, "Invalid body")
			return
		}
	}
	if err := h.repo.Create(record); err != nil {
		h.internalError(c, "mockapi_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// update PUT 与 PATCH 均按字段合并到已有记录
func (h *collectionHandler[T]) update(c *gin.Context) {
	id := c.Param("id")
	record, err := h.repo.GetByID(id)
	if err != nil {
		h.internalError(c, "mockapi_get_failed", err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, "Invalid body")
		return
	}
	if len(body) > 0 {
		if err := mergeBody(record, body); err != nil {
			c.JSON(http.StatusBadRequest, "Invalid body")
			return
		}
	}
	if err := h.repo.Save(record); err != nil {
		h.internalError(c, "mockapi_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *collectionHandler[T]) delete(c *gin.Context) {
	deleted, err := h.repo.Delete(c.Param("id"))
	if err != nil {
		h.internalError(c, "mockapi_delete_failed", err)
		return
	}
	if deleted == nil {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

func (h *collectionHandler[T]) internalError(c *gin.Context, event string, err error) {
	logger.Errorw(event,
		"collection", h.repo.Name(),
		"id", c.Param("id"),
		"request_id", c.GetString("request_id"),
		"error", err,
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, "Internal server error")
}

// parseCollectionQuery 解析 page/limit/sortBy/order，其余参数作为过滤条件
func parseCollectionQuery(c *gin.Context) (repository.CollectionQuery, error) {
	query := repository.CollectionQuery{
		Filters: make(map[string]string),
		SortBy:  strings.TrimSpace(c.Query("sortBy")),
		Order:   strings.TrimSpace(c.Query("order")),
	}
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedQueryKeys[key]; reserved || len(values) == 0 {
			continue
		}
		query.Filters[key] = values[0]
	}
	var err error
	if query.Page, err = parsePositiveInt(c.Query("page")); err != nil {
		return query, errors.New("invalid page")
	}
	if query.Limit, err = parsePositiveInt(c.Query("limit")); err != nil {
		return query, errors.New("invalid limit")
	}
	return query, nil
}

func parsePositiveInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.New("invalid integer")
	}
	return value, nil
}

// mergeBody 将请求体字段覆盖到记录上，忽略只读字段
func mergeBody(record interface{}, body []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}
	for _, key := range readOnlyFields {
		delete(fields, key)
	}
	cleaned, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(cleaned, record)
}
