// Package credential 承载一次签名请求对应的解锁凭证。
//
// Envelope 只能被使用一次，使用后立即清零；任何格式化、日志与 JSON 输出都只显示占位符。
package credential

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

const redacted = "[redacted]"

var (
	// ErrConsumed 表示凭证已被使用或丢弃。
	ErrConsumed = errors.New("credential already consumed")
	// ErrEmpty 表示凭证为空。
	ErrEmpty = errors.New("credential is empty")
)

// Envelope 属于且仅属于一个签名请求。
type Envelope struct {
	correlationID string

	mu       sync.Mutex
	secret   []byte
	consumed bool
}

// New 接管 secret 的所有权，调用方不得再读写该切片。
func New(correlationID string, secret []byte) (*Envelope, error) {
	if len(secret) == 0 {
		return nil, ErrEmpty
	}
	return &Envelope{correlationID: correlationID, secret: secret}, nil
}

// CorrelationID 返回所属请求。
func (e *Envelope) CorrelationID() string {
	if e == nil {
		return ""
	}
	return e.correlationID
}

// Use 将凭证交给 fn 一次，fn 返回后凭证被清零。fn 不得保留 secret 的引用。
func (e *Envelope) Use(fn func(secret []byte) error) error {
	if e == nil {
		return ErrConsumed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return ErrConsumed
	}
	e.consumed = true
	defer e.wipe()
	return fn(e.secret)
}

// Discard 清零凭证；可重复调用。
func (e *Envelope) Discard() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consumed = true
	e.wipe()
}

// Discarded 表示凭证已不可用。
func (e *Envelope) Discarded() bool {
	if e == nil {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consumed
}

func (e *Envelope) wipe() {
	Zero(e.secret)
	e.secret = nil
}

// String 不输出凭证内容。
func (e *Envelope) String() string {
	return fmt.Sprintf("credential{correlation=%s secret=%s}", e.CorrelationID(), redacted)
}

// GoString 覆盖 %#v。
func (e *Envelope) GoString() string { return e.String() }

// Format 保证任意 verb 都不会泄露内容。
func (e *Envelope) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(e.String()))
}

// LogValue 实现 slog.LogValuer。
func (e *Envelope) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("correlation_id", e.CorrelationID()),
		slog.String("secret", redacted),
	)
}

// MarshalJSON 不输出凭证内容。
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Zero 原地清零 buf。
func Zero(buf []byte) {
	if len(buf) == 0 {
		return
	}
	for i := range buf {
		buf[i] = 0
	}
	// 防止编译器优化掉填零。
	subtle.ConstantTimeByteEq(buf[0], buf[0])
	runtime.KeepAlive(buf)
}
