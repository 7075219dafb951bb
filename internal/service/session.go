package service

import (
	"context"
	"sync"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

const mirrorWriteTimeout = 3 * time.Second

// StateMirror 会话状态镜像（浏览器 localStorage 的服务端对应物）
type StateMirror interface {
	SaveCart(ctx context.Context, userID string, snapshot cart.Snapshot) error
	SaveSession(ctx context.Context, user models.User) error
	LoadSession(ctx context.Context, userID string) (*models.User, bool, error)
	Drop(ctx context.Context, userID string) error
}

// Session 单个登录用户的购物车会话
type Session struct {
	UserID string
	Store  *cart.Store

	unsubscribe func()
	mirrorCh    chan cart.Snapshot
	done        chan struct{}
}

// SessionRegistry 登录用户 -> 购物车会话
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	mirror   StateMirror
}

// NewSessionRegistry 创建会话注册表，mirror 可为 nil
func NewSessionRegistry(mirror StateMirror) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		mirror:   mirror,
	}
}

// Open 打开（或返回已存在的）会话；新会话从空快照开始
func (r *SessionRegistry) Open(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[userID]; ok {
		return session, false
	}
	session := &Session{UserID: userID, Store: cart.NewStore()}
	if r.mirror != nil {
		session.mirrorCh = make(chan cart.Snapshot, 1)
		session.done = make(chan struct{})
		go r.runMirror(session)
		session.unsubscribe = session.Store.Subscribe(func(snapshot cart.Snapshot) {
			offerLatest(session.mirrorCh, snapshot)
		})
	}
	r.sessions[userID] = session
	return session, true
}

// Get 获取会话
func (r *SessionRegistry) Get(userID string) (*Session, bool) {
	if userID == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[userID]
	return session, ok
}

// Close 关闭会话：广播空快照并清除镜像
func (r *SessionRegistry) Close(userID string) {
	r.mu.Lock()
	session, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if !ok {
		return
	}

	session.Store.Reset()
	if session.unsubscribe != nil {
		session.unsubscribe()
	}
	if session.mirrorCh != nil {
		close(session.mirrorCh)
		<-session.done
	}
	if r.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()
		if err := r.mirror.Drop(ctx, userID); err != nil {
			logger.Warnw("session_mirror_drop_failed", "user_id", userID, "error", err)
		}
	}
}

// Count 当前会话数
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SaveUser 镜像登录用户
func (r *SessionRegistry) SaveUser(ctx context.Context, user models.User) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.SaveSession(ctx, user); err != nil {
		logger.Warnw("session_mirror_save_failed", "user_id", user.ID, "error", err)
	}
}

// LoadUser 从镜像恢复登录用户，未启用镜像或未命中时返回 false
func (r *SessionRegistry) LoadUser(ctx context.Context, userID string) (*models.User, bool) {
	if r.mirror == nil {
		return nil, false
	}
	user, hit, err := r.mirror.LoadSession(ctx, userID)
	if err != nil {
		logger.Warnw("session_mirror_load_failed", "user_id", userID, "error", err)
		return nil, false
	}
	return user, hit
}

// runMirror 按提交顺序写出最新快照，积压时只保留最新一份
func (r *SessionRegistry) runMirror(session *Session) {
	defer close(session.done)
	for snapshot := range session.mirrorCh {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		if err := r.mirror.SaveCart(ctx, session.UserID, snapshot); err != nil {
			logger.Warnw("cart_mirror_save_failed", "user_id", session.UserID, "error", err)
		}
		cancel()
	}
}

func offerLatest(ch chan cart.Snapshot, snapshot cart.Snapshot) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
