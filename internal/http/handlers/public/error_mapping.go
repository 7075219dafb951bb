package public

import (
	"errors"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/remote"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	if respondWithDetailedError(c, err) {
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

// respondWithDetailedError 处理自带提示文案的错误类型
func respondWithDetailedError(c *gin.Context, err error) bool {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		handlershared.RespondErrorWithData(c, response.CodeBadRequest, fieldErr.Message, gin.H{"field": fieldErr.Field}, nil)
		return true
	}
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		handlershared.RespondErrorWithData(c, response.CodeBadRequest, stockErr.Error(), gin.H{
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
		}, nil)
		return true
	}
	var outOfStockErr *service.OutOfStockError
	if errors.As(err, &outOfStockErr) {
		handlershared.RespondErrorWithData(c, response.CodeConflict, outOfStockErr.Error(), gin.H{
			"out_of_stock_items": outOfStockErr.Items,
		}, nil)
		return true
	}
	return false
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var sessionErrorRules = []mappedHandlerError{
	{target: service.ErrNoActiveCart, code: response.CodeUnauthorized, msg: "No active cart. Please login again."},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "User not found"},
}

var remoteErrorRules = []mappedHandlerError{
	{target: remote.ErrSyncFailed, code: response.CodeUnavailable, msg: "Store service is unavailable, please try again"},
}

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "Product not found"},
	{target: service.ErrCatalogUnavailable, code: response.CodeUnavailable, msg: "Products are unavailable right now"},
}

var cartMutationErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "Quantity must be at least 1"},
	{target: service.ErrCartLineNotFound, code: response.CodeNotFound, msg: "Item not found in cart"},
	{target: service.ErrCartLineNotSynced, code: response.CodeConflict, msg: "Item is still being saved, please retry"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "Your cart is empty"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "Order not found"},
	{target: service.ErrInvalidOrderStatus, code: response.CodeBadRequest, msg: "Invalid order status"},
	{target: service.ErrOrderMalformed, code: response.CodeInternal, msg: "Order data is malformed"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "Invalid email or password"},
	{target: service.ErrInvalidToken, code: response.CodeUnauthorized, msg: "Invalid or expired token"},
}

var cartErrorRules = concatMappedHandlerErrors(sessionErrorRules, cartMutationErrorRules, catalogErrorRules, remoteErrorRules)

var checkoutErrorRules = concatMappedHandlerErrors(sessionErrorRules, orderErrorRules, catalogErrorRules, remoteErrorRules)

var userErrorRules = concatMappedHandlerErrors(authErrorRules, sessionErrorRules, remoteErrorRules)

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "Failed to update cart")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "Failed to process order")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(catalogErrorRules, remoteErrorRules), response.CodeInternal, "Failed to load products")
}

func respondUserError(c *gin.Context, err error) {
	respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "Request failed")
}
