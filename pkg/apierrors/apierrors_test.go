package apierrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeServiceUnavailable:   503,
		CodeNoUIRegistered:       503,
		CodeUserCancelled:        403,
		CodeAuthenticationFailed: 401,
		CodeRequestTimedOut:      504,
		CodeRequestCancelled:     499,
		CodeRetryLater:           429,
		Code("UNKNOWN"):          500,
	}

	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Fatalf("HTTPStatus(%s)=%d, want %d", code, got, want)
		}
	}
}

func TestGRPCStatus(t *testing.T) {
	cases := map[Code]codes.Code{
		CodeServiceUnavailable:   codes.Unavailable,
		CodeIncompatibleVersion:  codes.FailedPrecondition,
		CodeAuthenticationFailed: codes.Unauthenticated,
		CodeRequestTimedOut:      codes.DeadlineExceeded,
		CodeRequestCancelled:     codes.Canceled,
		CodeNotFound:             codes.NotFound,
		Code("UNKNOWN"):          codes.Internal,
	}

	for code, want := range cases {
		if got := GRPCStatus(code); got != want {
			t.Fatalf("GRPCStatus(%s)=%s, want %s", code, got, want)
		}
	}
}

func TestRequiresRetryAfter(t *testing.T) {
	if !RequiresRetryAfter(CodeRetryLater) {
		t.Fatal("RetryLater should require header")
	}
	if RequiresRetryAfter(CodeUserCancelled) {
		t.Fatal("UserCancelled should not require header")
	}
}

func TestErrorRetryAfterHint(t *testing.T) {
	err := New(CodeRetryLater, "slow down").WithRetryAfter(1500 * time.Millisecond)
	if hint := err.RetryAfterHint(); hint != "2" {
		t.Fatalf("expected retryAfter 2, got %q", hint)
	}
	if err.Error() != "slow down" {
		t.Fatalf("unexpected Error(): %s", err.Error())
	}
	if hint := New(CodeRetryLater, "").RetryAfterHint(); hint != "" {
		t.Fatalf("expected empty hint, got %q", hint)
	}
}

func TestFromError(t *testing.T) {
	original := New(CodeNoUIRegistered, "no ui")
	wrapped := fmt.Errorf("wrap: %w", original)
	if apiErr, ok := FromError(wrapped); !ok {
		t.Fatal("expected to unwrap api error")
	} else if apiErr.Code != CodeNoUIRegistered {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
	if _, ok := FromError(fmt.Errorf("other")); ok {
		t.Fatal("should not unwrap plain error")
	}
	require.True(t, errors.Is(wrapped, New(CodeNoUIRegistered, "")))
	require.False(t, errors.Is(wrapped, New(CodeUserCancelled, "")))
	require.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestGRPCRoundTrip(t *testing.T) {
	src := New(CodeRetryLater, "queue full").WithRetryAfter(3 * time.Second)
	grpcErr := ToGRPC(fmt.Errorf("sign: %w", src))

	st, ok := status.FromError(grpcErr)
	require.True(t, ok)
	require.Equal(t, codes.ResourceExhausted, st.Code())

	back, ok := FromError(FromGRPC(grpcErr))
	require.True(t, ok)
	require.Equal(t, CodeRetryLater, back.Code)
	require.Equal(t, "queue full", back.Message)
	require.Equal(t, "3", back.RetryAfterHint())
}

func TestToGRPCHidesInternalErrors(t *testing.T) {
	st, ok := status.FromError(ToGRPC(context.Canceled))
	require.True(t, ok)
	require.Equal(t, codes.Internal, st.Code())
	require.Equal(t, "internal error", st.Message())
}

func TestFromGRPCFallsBackToStatusCode(t *testing.T) {
	err := FromGRPC(status.Error(codes.Unavailable, "connection refused"))
	require.True(t, HasCode(err, CodeServiceUnavailable))

	plain := status.Error(codes.Aborted, "aborted")
	require.Equal(t, plain, FromGRPC(plain))
}
