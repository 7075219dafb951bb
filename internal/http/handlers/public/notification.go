package public

import (
	"io"
	"time"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

const defaultKeepalive = 25 * time.Second

// StreamNotifications 以 SSE 推送当前用户的提示消息
func (h *Handler) StreamNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	keepalive := defaultKeepalive
	if h.Config != nil && h.Config.Notification.KeepaliveSec > 0 {
		keepalive = time.Duration(h.Config.Notification.KeepaliveSec) * time.Second
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	events, cancel := h.Notifier.Subscribe(uid)
	defer cancel()
	log := handlershared.RequestLog(c)
	log.Debugw("notification_stream_opened", "user_id", uid, "subscribers", h.Notifier.SubscriberCount(uid))
	defer log.Debugw("notification_stream_closed", "user_id", uid)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"cart_count": h.CartService.Count(uid)})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
