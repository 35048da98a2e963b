package service

import (
	"errors"
)

// ErrorKind 业务错误类别，由控制器映射为HTTP状态码
type ErrorKind int

const (
	// KindValidation 参数不合法
	KindValidation ErrorKind = iota + 1
	// KindUnauthenticated 未登录
	KindUnauthenticated
	// KindForbidden 无权限
	KindForbidden
	// KindNotFound 资源不存在
	KindNotFound
	// KindConflict 唯一性冲突或仍被引用
	KindConflict
)

// Error 业务错误
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Invalid 参数错误
func Invalid(message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Unauthenticated 未登录
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden 无权限
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound 资源不存在
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 冲突
func Conflict(message string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

// AsError 提取业务错误
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind 判断错误类别
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// 常用错误
var (
	errLoginRequired = Unauthenticated("请先登录")
	errAdminRequired = Forbidden("需要管理员权限")
)
