package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error 统一错误对象：Code 直接使用 HTTP 语义
type Error struct {
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &Error{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Code: http.StatusForbidden, Msg: msg} }
func Conflict(msg string) error     { return &Error{Code: http.StatusConflict, Msg: msg} }

// NotFound 形如 "Perfume with ID 42 not found"
func NotFound(entity, id string) error {
	return &Error{Code: http.StatusNotFound, Msg: fmt.Sprintf("%s with ID %s not found", entity, id)}
}

// Internal 对外只暴露 msg，原始错误保留在 Err 里供日志使用
func Internal(msg string, err error) error {
	return &Error{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Upstream 外部依赖（图床/存储）失败，按 500 处理
func Upstream(msg string, err error) error {
	return &Error{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// CodeOf 非 *Error 一律视为 500
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool     { return CodeOf(err) == http.StatusNotFound }
func IsConflict(err error) bool     { return CodeOf(err) == http.StatusConflict }
func IsUnauthorized(err error) bool { return CodeOf(err) == http.StatusUnauthorized }
