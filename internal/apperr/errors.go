package apperr

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 按错误类型比较，便于 errors.Is(err, apperr.NotFound(""))
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func InvalidArg(msg string) error { return New(CodeInvalidArgument, msg) }
func Unauthorized(msg string) error { return New(CodeUnauthenticated, msg) }
func Forbidden(msg string) error { return New(CodePermissionDenied, msg) }
func NotFound(msg string) error { return New(CodeNotFound, msg) }
func Conflict(msg string) error { return New(CodeAlreadyExists, msg) }
func Unavailable(msg string) error { return New(CodeUnavailable, msg) }
func Timeout(cause error) error { return Wrap(CodeDeadlineExceeded, "storage timeout", cause) }
func StorageFailure(cause error) error { return Wrap(CodeStorageFailure, "storage failure", cause) }

// CodeOf 提取错误类型；非 *Error 的错误一律视为存储/内部故障
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStorageFailure
}

// MessageOf 返回可以安全展示给客户端的文案
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && !e.Code.Internal() {
		return e.Message
	}
	return "internal server error"
}

// IsCode 判断错误是否属于某类型
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
