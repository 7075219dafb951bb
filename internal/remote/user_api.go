package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// UserAPI 用户集合
type UserAPI struct {
	client   *Client
	endpoint string
}

// NewUserAPI 创建用户适配器
func NewUserAPI(client *Client, baseURL string) *UserAPI {
	return &UserAPI{client: client, endpoint: joinURL(baseURL, constants.CollectionUsers)}
}

// List 全部用户
func (a *UserAPI) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := a.client.do(ctx, http.MethodGet, a.endpoint, nil, &users); err != nil {
		if IsNotFound(err) {
			return []models.User{}, nil
		}
		return nil, newSyncError("list_users", "", err)
	}
	return users, nil
}

// Get 用户详情
func (a *UserAPI) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := a.client.do(ctx, http.MethodGet, joinURL(a.endpoint, url.PathEscape(id)), nil, &user); err != nil {
		return nil, newSyncError("get_user", id, err)
	}
	return &user, nil
}

// ProfileUpdate 资料更新字段，nil 表示不修改
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Update 更新用户资料
func (a *UserAPI) Update(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := a.client.do(ctx, http.MethodPut, joinURL(a.endpoint, url.PathEscape(id)), update, &user); err != nil {
		return nil, newSyncError("update_user", id, err)
	}
	return &user, nil
}
