package shared

import (
	"strings"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextString 从上下文读取非空字符串并统一处理错误响应。
func GetContextString(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "Please login to continue", nil)
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		RespondError(c, response.CodeInternal, "Invalid session context", nil)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		RespondError(c, response.CodeUnauthorized, "Please login to continue", nil)
		return "", false
	}
	return text, true
}
