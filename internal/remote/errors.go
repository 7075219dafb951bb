package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncFailed 远端调用失败（网络错误或非 2xx）
	ErrSyncFailed = errors.New("remote sync failed")
	// ErrNotFound 远端返回 404
	ErrNotFound = errors.New("remote resource not found")
	// ErrStaleReference 更新或删除的远端行已不存在
	ErrStaleReference = errors.New("remote row no longer exists")
)

// SyncError 远端调用失败详情
type SyncError struct {
	Op       string
	RemoteID string
	Status   int
	Err      error
}

func (e *SyncError) Error() string {
	msg := "remote " + e.Op
	if e.RemoteID != "" {
		msg += " " + e.RemoteID
	}
	if e.Status > 0 {
		msg += fmt.Sprintf(" status=%d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 同时匹配 ErrSyncFailed 与底层原因
func (e *SyncError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSyncFailed}
	}
	return []error{ErrSyncFailed, e.Err}
}

// StatusError 非 2xx 响应
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

// Is 404 视为 ErrNotFound
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

func newSyncError(op, remoteID string, err error) *SyncError {
	syncErr := &SyncError{Op: op, RemoteID: remoteID, Err: err}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		syncErr.Status = statusErr.Status
	}
	return syncErr
}

// IsNotFound 判断是否为 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ErrMissingRemoteID 远端创建成功但未返回 id
var ErrMissingRemoteID = errors.New("remote create returned no id")
