package notify

import (
	"sync"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification 提示消息
type Notification struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	Message    string        `json:"message"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Durations 各类型提示的展示时长
type Durations struct {
	Success time.Duration
	Error   time.Duration
	Warning time.Duration
	Info    time.Duration
}

// DefaultDurations 默认展示时长
func DefaultDurations() Durations {
	return Durations{
		Success: 3 * time.Second,
		Error:   5 * time.Second,
		Warning: 4 * time.Second,
		Info:    3 * time.Second,
	}
}

func (d Durations) forType(kind string) time.Duration {
	switch kind {
	case constants.NotificationSuccess:
		return d.Success
	case constants.NotificationError:
		return d.Error
	case constants.NotificationWarning:
		return d.Warning
	default:
		return d.Info
	}
}

// Sink 提示消息出口，发送方不等待确认
type Sink interface {
	Notify(userID, kind, message string)
}

// Hub 按用户分发提示消息
// 订阅者缓冲区满时丢弃消息，发送方永不阻塞
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[uint64]chan Notification
	nextID      uint64
	durations   Durations
	bufferSize  int
	log         *zap.SugaredLogger
}

// NewHub 创建 Hub
func NewHub(durations Durations, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: make(map[string]map[uint64]chan Notification),
		durations:   durations,
		bufferSize:  bufferSize,
		log:         logger.Component("notify"),
	}
}

// Notify 发送提示
func (h *Hub) Notify(userID, kind, message string) {
	if h == nil {
		return
	}
	duration := h.durations.forType(kind)
	n := Notification{
		ID:         uuid.NewString(),
		Type:       kind,
		Message:    message,
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	h.log.Debugw("notification_emitted", "user_id", userID, "type", kind, "message", message)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers[userID] {
		select {
		case ch <- n:
		default:
			h.log.Warnw("notification_dropped", "user_id", userID, "type", kind)
		}
	}
}

// Success 成功提示
func (h *Hub) Success(userID, message string) { h.Notify(userID, constants.NotificationSuccess, message) }

// Info 普通提示
func (h *Hub) Info(userID, message string) { h.Notify(userID, constants.NotificationInfo, message) }

// Subscribe 订阅用户提示，返回只读通道与取消函数
func (h *Hub) Subscribe(userID string) (<-chan Notification, func()) {
	ch := make(chan Notification, h.bufferSize)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[uint64]chan Notification)
	}
	h.subscribers[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[userID], id)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// SubscriberCount 用户当前订阅数
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
