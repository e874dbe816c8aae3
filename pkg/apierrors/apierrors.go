package apierrors

import (
	"errors"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
)

// Code 表示统一业务错误码。
type Code string

const (
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeIncompatibleVersion  Code = "INCOMPATIBLE_VERSION"
	CodeNoUIRegistered       Code = "NO_UI_REGISTERED"
	CodeUserCancelled        Code = "USER_CANCELLED"
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"
	CodeRequestTimedOut      Code = "REQUEST_TIMED_OUT"
	// CodeRequestCancelled 表示调用方在终态前放弃了请求，与用户拒绝及超时区分。
	CodeRequestCancelled Code = "REQUEST_CANCELLED"

	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyAnswered Code = "ALREADY_ANSWERED"
	CodeInsecureChannel Code = "INSECURE_CHANNEL"
	CodeRetryLater      Code = "RETRY_LATER"
	CodeInvalidKey      Code = "INVALID_KEY"
	CodeInternal        Code = "INTERNAL_ERROR"
)

var httpStatusMap = map[Code]int{
	CodeServiceUnavailable:   503,
	CodeIncompatibleVersion:  400,
	CodeNoUIRegistered:       503,
	CodeUserCancelled:        403,
	CodeAuthenticationFailed: 401,
	CodeRequestTimedOut:      504,
	CodeRequestCancelled:     499,
	CodeInvalidArgument:      400,
	CodeNotFound:             404,
	CodeAlreadyAnswered:      409,
	CodeInsecureChannel:      403,
	CodeRetryLater:           429,
	CodeInvalidKey:           404,
}

var grpcStatusMap = map[Code]codes.Code{
	CodeServiceUnavailable:   codes.Unavailable,
	CodeIncompatibleVersion:  codes.FailedPrecondition,
	CodeNoUIRegistered:       codes.FailedPrecondition,
	CodeUserCancelled:        codes.PermissionDenied,
	CodeAuthenticationFailed: codes.Unauthenticated,
	CodeRequestTimedOut:      codes.DeadlineExceeded,
	CodeRequestCancelled:     codes.Canceled,
	CodeInvalidArgument:      codes.InvalidArgument,
	CodeNotFound:             codes.NotFound,
	CodeAlreadyAnswered:      codes.AlreadyExists,
	CodeInsecureChannel:      codes.PermissionDenied,
	CodeRetryLater:           codes.ResourceExhausted,
	CodeInvalidKey:           codes.NotFound,
}

// Error 表示带统一错误码的业务错误。
type Error struct {
	Code       Code
	Message    string
	retryAfter time.Duration
}

// New 创建一个新的业务错误。
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithRetryAfter 设置 Retry-After 提示，返回自身方便链式调用。
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.retryAfter = d
	return e
}

// RetryAfterHint 以秒为单位返回 Retry-After 提示文本。
func (e *Error) RetryAfterHint() string {
	if e == nil || e.retryAfter <= 0 {
		return ""
	}
	seconds := int((e.retryAfter + time.Second - 1) / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Is 让 errors.Is 按错误码比较，便于与哨兵错误匹配。
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// FromError 尝试从通用 error 中解析业务错误。
func FromError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CodeOf 返回 err 携带的错误码，非业务错误返回 CodeInternal。
func CodeOf(err error) Code {
	if apiErr, ok := FromError(err); ok {
		return apiErr.Code
	}
	return CodeInternal
}

// HasCode 判断 err 是否为指定错误码的业务错误。
func HasCode(err error, code Code) bool {
	apiErr, ok := FromError(err)
	return ok && apiErr.Code == code
}

// HTTPStatus 返回对应的 HTTP 状态码，未知错误默认 500。
func HTTPStatus(code Code) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return 500
}

// GRPCStatus 返回对应的 gRPC code，未知错误默认 Internal。
func GRPCStatus(code Code) codes.Code {
	if status, ok := grpcStatusMap[code]; ok {
		return status
	}
	return codes.Internal
}

// RequiresRetryAfter 标记是否必须携带 Retry-After 头。
func RequiresRetryAfter(code Code) bool {
	return code == CodeRetryLater
}
