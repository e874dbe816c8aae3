// Package signer 实现签名后端：为每个请求分配 correlation id，经已注册的 UI
// 向用户索取凭证，串行解锁密钥并签名，保证每个请求只有一个终态。
package signer

import (
	"context"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/ledger"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/ethereum/go-ethereum/common"
)

// PayloadKind 表示待签名内容的类型。
type PayloadKind string

const (
	KindTransaction PayloadKind = signerv1.KindTransaction
	KindData        PayloadKind = signerv1.KindData
	KindTypedData   PayloadKind = signerv1.KindTypedData
)

// SignRequest 是应用提交的签名请求。Summary 为应用附带的说明，只作为补充展示。
type SignRequest struct {
	Kind    PayloadKind
	Payload []byte
	Summary string
}

// SignedResult 是签名成功后的返回值。交易签名的 V 为 0/1，数据与 typed data 签名的 V 为 27/28。
type SignedResult struct {
	CorrelationID string
	Account       common.Address
	Signature     []byte
	SignedTx      []byte
	TxHash        common.Hash
}

// Key 是单次签名期间的已解锁密钥，用完必须 Zero。
type Key interface {
	Address() common.Address
	Sign(hash []byte) ([]byte, error)
	Zero()
}

// Unlocker 用凭证解锁账户。失败时返回 AUTHENTICATION_FAILED 或 INVALID_KEY 业务错误。
type Unlocker interface {
	Unlock(ctx context.Context, account common.Address, secret []byte) (Key, error)
}

// AccountChecker 可选地由 Unlocker 实现，用于在提示用户前拒绝未知账户。
type AccountChecker interface {
	Has(account common.Address) bool
}

// RegistrationSource 提供当前 UI 注册。
type RegistrationSource interface {
	Current(ctx context.Context) (*registry.Record, error)
}

// Prompt 是推送给 UI 的内容，不含任何凭证。
type Prompt struct {
	CorrelationID string
	Summary       string
	Account       common.Address
	Kind          PayloadKind
	Deadline      time.Time
}

// Prompter 通知已注册的 UI 有请求待确认。只负责送达，用户的回应通过
// Backend.SubmitCredential / Backend.CancelRequest 异步返回。
type Prompter interface {
	Prompt(ctx context.Context, rec registry.Record, prompt Prompt) error
}

// OutcomeRecorder 持久化请求终态。
type OutcomeRecorder interface {
	Record(ctx context.Context, e ledger.Entry) (bool, error)
}
