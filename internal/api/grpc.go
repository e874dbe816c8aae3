package signerapi

import (
	"context"
	"log/slog"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/credential"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/aegis-sign/jadesigner/pkg/validator"
	"github.com/ethereum/go-ethereum/common"
)

// GRPCServer 实现 signer.v1.SignerService。
type GRPCServer struct {
	signerv1.UnimplementedSignerServiceServer
	signer    SignService
	registrar Registrar
	logger    *slog.Logger

	allowInsecureCredentials bool
}

// GRPCOption 自定义 GRPCServer。
type GRPCOption func(*GRPCServer)

// WithInsecureCredentials 允许经明文 TCP 接收凭证。
func WithInsecureCredentials(allow bool) GRPCOption {
	return func(s *GRPCServer) { s.allowInsecureCredentials = allow }
}

// WithLogger 注入 slog Logger。
func WithLogger(l *slog.Logger) GRPCOption {
	return func(s *GRPCServer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewGRPCServer 构造 gRPC server。
func NewGRPCServer(svc SignService, registrar Registrar, opts ...GRPCOption) *GRPCServer {
	if svc == nil || registrar == nil {
		panic("sign service and registrar are required")
	}
	s := &GRPCServer{signer: svc, registrar: registrar, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign 校验 payload 后阻塞至请求得到终态。
func (s *GRPCServer) Sign(ctx context.Context, req *signerv1.SignRequest) (*signerv1.SignResponse, error) {
	if req == nil {
		return nil, apierrors.ToGRPC(apierrors.New(apierrors.CodeInvalidArgument, "request is required"))
	}
	if err := validator.CheckPayloadSize(req.GetPayload()); err != nil {
		return nil, apierrors.ToGRPC(apierrors.New(apierrors.CodeInvalidArgument, err.Error()))
	}
	res, err := s.signer.Sign(ctx, signer.SignRequest{
		Kind:    signer.PayloadKind(req.GetKind()),
		Payload: req.GetPayload(),
		Summary: req.GetSummary(),
	})
	if err != nil {
		return nil, apierrors.ToGRPC(err)
	}
	return toSignResponse(res), nil
}

// Register 登记 UI 回调端点。
func (s *GRPCServer) Register(ctx context.Context, req *signerv1.RegisterRequest) (*signerv1.Registration, error) {
	caps := make([]registry.Capability, 0, len(req.GetCapabilities()))
	for _, c := range req.GetCapabilities() {
		caps = append(caps, registry.Capability(c))
	}
	rec, err := s.registrar.Register(ctx, req.GetCallbackEndpoint(), caps)
	if err != nil {
		return nil, apierrors.ToGRPC(err)
	}
	return toRegistration(rec), nil
}

// Renew 刷新注册，注册已失效时返回 NotFound，UI 应重新注册。
func (s *GRPCServer) Renew(ctx context.Context, req *signerv1.RenewRequest) (*signerv1.Registration, error) {
	rec, err := s.registrar.Renew(ctx, req.GetRegistrationId())
	if err != nil {
		return nil, apierrors.ToGRPC(err)
	}
	return toRegistration(rec), nil
}

// Deregister 撤销注册。
func (s *GRPCServer) Deregister(ctx context.Context, req *signerv1.DeregisterRequest) (*signerv1.DeregisterResponse, error) {
	if err := s.registrar.Deregister(ctx, req.GetRegistrationId()); err != nil {
		return nil, apierrors.ToGRPC(err)
	}
	return &signerv1.DeregisterResponse{}, nil
}

// SubmitCredential 接收 UI 回传的凭证。凭证只接受来自安全通道的请求。
func (s *GRPCServer) SubmitCredential(ctx context.Context, req *signerv1.SubmitCredentialRequest) (*signerv1.SubmitCredentialResponse, error) {
	secret := req.GetCredential()
	if !s.allowInsecureCredentials && !transport.IsSecureChannel(ctx) {
		credential.Zero(secret)
		s.logger.Warn("credential rejected on insecure channel", slog.String("correlation_id", req.GetCorrelationId()))
		return nil, apierrors.ToGRPC(apierrors.New(apierrors.CodeInsecureChannel, "credentials require a local or TLS channel"))
	}
	if req.GetCorrelationId() == "" {
		credential.Zero(secret)
		return nil, apierrors.ToGRPC(apierrors.New(apierrors.CodeInvalidArgument, "correlationId is required"))
	}
	if err := s.signer.SubmitCredential(ctx, req.GetCorrelationId(), secret); err != nil {
		return nil, apierrors.ToGRPC(err)
	}
	return &signerv1.SubmitCredentialResponse{}, nil
}

// CancelRequest 表示用户拒绝。
func (s *GRPCServer) CancelRequest(ctx context.Context, req *signerv1.CancelRequestRequest) (*signerv1.CancelRequestResponse, error) {
	if req.GetCorrelationId() == "" {
		return nil, apierrors.ToGRPC(apierrors.New(apierrors.CodeInvalidArgument, "correlationId is required"))
	}
	if err := s.signer.CancelRequest(ctx, req.GetCorrelationId(), req.GetReason()); err != nil {
		return nil, apierrors.ToGRPC(err)
	}
	return &signerv1.CancelRequestResponse{}, nil
}

func toSignResponse(res *signer.SignedResult) *signerv1.SignResponse {
	out := &signerv1.SignResponse{
		CorrelationId: res.CorrelationID,
		Account:       res.Account.Hex(),
		Signature:     res.Signature,
		SignedTx:      res.SignedTx,
	}
	if res.TxHash != (common.Hash{}) {
		out.TxHash = res.TxHash.Hex()
	}
	return out
}

func toRegistration(rec registry.Record) *signerv1.Registration {
	return &signerv1.Registration{
		RegistrationId:   rec.ID,
		CallbackEndpoint: rec.CallbackEndpoint,
		ExpiresAtUnixMs:  rec.ExpiresAt.UnixMilli(),
		TtlMs:            rec.ExpiresAt.Sub(rec.RefreshedAt).Milliseconds(),
	}
}
