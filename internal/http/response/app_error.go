package response

import "fmt"

// AppError 业务错误：对外的状态码与文案，附带明细数据与原始错误
type AppError struct {
	Code    int
	Message string
	Data    interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithData 附带明细数据（字段名、可用库存等）
func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}
