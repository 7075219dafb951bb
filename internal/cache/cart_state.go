package cache

import (
	"context"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
)

const (
	cartStateTTL    = 7 * 24 * time.Hour
	sessionStateTTL = 24 * time.Hour
)

// CartState 购物车镜像
type CartState struct {
	UserID    string      `json:"user_id"`
	Lines     []cart.Line `json:"lines"`
	ItemCount int         `json:"item_count"`
	UpdatedAt int64       `json:"updated_at"`
}

// SessionState 登录会话镜像
type SessionState struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	LoggedInAt int64  `json:"logged_in_at"`
}

func cartStateKey(userID string) string {
	return "cart:" + userID
}

func sessionStateKey(userID string) string {
	return "session:" + userID
}

// SetCartState 写入购物车镜像
func SetCartState(ctx context.Context, userID string, snapshot cart.Snapshot) error {
	state := CartState{
		UserID:    userID,
		Lines:     snapshot.Lines(),
		ItemCount: snapshot.ItemCount(),
		UpdatedAt: time.Now().Unix(),
	}
	return SetJSON(ctx, cartStateKey(userID), state, cartStateTTL)
}

// GetCartState 读取购物车镜像
func GetCartState(ctx context.Context, userID string) (*CartState, bool, error) {
	var state CartState
	hit, err := GetJSON(ctx, cartStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetSessionState 写入会话镜像
func SetSessionState(ctx context.Context, user models.User) error {
	state := SessionState{
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		Address:    user.Address,
		LoggedInAt: time.Now().Unix(),
	}
	return SetJSON(ctx, sessionStateKey(user.ID), state, sessionStateTTL)
}

// GetSessionState 读取会话镜像
func GetSessionState(ctx context.Context, userID string) (*SessionState, bool, error) {
	var state SessionState
	hit, err := GetJSON(ctx, sessionStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// DelUserState 删除用户的会话与购物车镜像
func DelUserState(ctx context.Context, userID string) error {
	if err := Del(ctx, cartStateKey(userID)); err != nil {
		return err
	}
	return Del(ctx, sessionStateKey(userID))
}

// Mirror 将会话状态镜像到 Redis，Redis 未启用时所有操作为空操作
type Mirror struct{}

// SaveCart 保存购物车快照
func (Mirror) SaveCart(ctx context.Context, userID string, snapshot cart.Snapshot) error {
	return SetCartState(ctx, userID, snapshot)
}

// SaveSession 保存登录用户
func (Mirror) SaveSession(ctx context.Context, user models.User) error {
	return SetSessionState(ctx, user)
}

// LoadSession 读取镜像中的登录用户
func (Mirror) LoadSession(ctx context.Context, userID string) (*models.User, bool, error) {
	state, hit, err := GetSessionState(ctx, userID)
	if err != nil || !hit {
		return nil, false, err
	}
	return &models.User{
		ID:      state.UserID,
		Name:    state.Name,
		Email:   state.Email,
		Phone:   state.Phone,
		Address: state.Address,
	}, true, nil
}

// Drop 清除用户镜像
func (Mirror) Drop(ctx context.Context, userID string) error {
	return DelUserState(ctx, userID)
}
