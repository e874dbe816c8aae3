package apierrors

import (
	"errors"
	"strconv"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain 是 ErrorInfo.Domain 的固定取值。
const ErrorDomain = "jadesigner"

const retryAfterKey = "retry_after_seconds"

// ToGRPC 将业务错误转换为 gRPC status，错误码写入 ErrorInfo.Reason。
// 非业务错误统一返回 Internal 且不暴露原始信息。
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isAPIError(err) {
		return err
	}
	apiErr, ok := FromError(err)
	if !ok {
		return status.Error(codes.Internal, "internal error")
	}
	st := status.New(GRPCStatus(apiErr.Code), apiErr.Error())
	info := &errdetails.ErrorInfo{Reason: string(apiErr.Code), Domain: ErrorDomain}
	if hint := apiErr.RetryAfterHint(); hint != "" {
		info.Metadata = map[string]string{retryAfterKey: hint}
	}
	if withDetails, derr := st.WithDetails(info); derr == nil {
		st = withDetails
	}
	return st.Err()
}

// FromGRPC 从 gRPC status 中还原业务错误；无法识别时按 gRPC code 推断。
func FromGRPC(err error) error {
	if err == nil {
		return nil
	}
	if isAPIError(err) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		apiErr := New(Code(info.GetReason()), st.Message())
		if raw := info.GetMetadata()[retryAfterKey]; raw != "" {
			if secs, perr := strconv.Atoi(raw); perr == nil {
				apiErr.WithRetryAfter(time.Duration(secs) * time.Second)
			}
		}
		return apiErr
	}
	switch st.Code() {
	case codes.Unavailable:
		return New(CodeServiceUnavailable, st.Message())
	case codes.DeadlineExceeded:
		return New(CodeRequestTimedOut, st.Message())
	case codes.Canceled:
		return New(CodeRequestCancelled, st.Message())
	case codes.InvalidArgument:
		return New(CodeInvalidArgument, st.Message())
	case codes.NotFound:
		return New(CodeNotFound, st.Message())
	}
	return err
}

func isAPIError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
