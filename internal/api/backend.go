package signerapi

import (
	"context"

	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/ethereum/go-ethereum/accounts"
)

// SignService 定义签名编排接口，HTTP/gRPC handler 通过它与 signer.Backend 交互。
type SignService interface {
	Sign(ctx context.Context, req signer.SignRequest) (*signer.SignedResult, error)
	SubmitCredential(ctx context.Context, correlationID string, secret []byte) error
	CancelRequest(ctx context.Context, correlationID, reason string) error
}

// Registrar 管理 UI 注册。
type Registrar interface {
	Register(ctx context.Context, callbackEndpoint string, capabilities []registry.Capability) (registry.Record, error)
	Renew(ctx context.Context, id string) (registry.Record, error)
	Deregister(ctx context.Context, id string) error
	Current(ctx context.Context) (*registry.Record, error)
}

// AccountStore 是 HTTP 账户查询接口所需的 keystore 能力。创建与改密只走本机 CLI，
// passphrase 不经过 HTTP。
type AccountStore interface {
	Accounts() []accounts.Account
}
