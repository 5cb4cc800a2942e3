package apperr

import "net/http"

type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"
	CodeStorageFailure   Code = "STORAGE_FAILURE"
	CodeUnavailable      Code = "UNAVAILABLE"
)

// HTTPStatus 错误类型到 HTTP 状态码的映射
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Internal 是否为需要在服务端记录日志、对客户端隐藏细节的错误
func (c Code) Internal() bool {
	return c == CodeStorageFailure || c == CodeDeadlineExceeded
}
