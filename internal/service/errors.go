package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoActiveCart       = errors.New("no active cart")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrCartLineNotFound   = errors.New("cart line not found")
	ErrCartLineNotSynced  = errors.New("cart line not yet synced")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductOutOfStock  = errors.New("product out of stock")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrOrderMalformed     = errors.New("order payload malformed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStockValidation    = errors.New("stock validation failed")
	ErrQueueUnavailable   = errors.New("queue unavailable")
)

// StockError 库存不足详情
type StockError struct {
	ProductID string
	Name      string
	Available int
}

func (e *StockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%s is out of stock", e.Name)
	}
	return fmt.Sprintf("Only %d units available", e.Available)
}

func (e *StockError) Unwrap() error {
	if e.Available <= 0 {
		return ErrProductOutOfStock
	}
	return ErrInsufficientStock
}

// OutOfStockError 结算前库存校验失败
type OutOfStockError struct {
	Items []string
}

func (e *OutOfStockError) Error() string {
	return "Some items are out of stock: " + strings.Join(e.Items, ", ")
}

func (e *OutOfStockError) Unwrap() error {
	return ErrStockValidation
}

// FieldError 表单字段校验失败
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}
