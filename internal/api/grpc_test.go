package signerapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/test/bufconn"
)

func dialServer(t *testing.T, srv *GRPCServer) signerv1.SignerServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	signerv1.RegisterSignerServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return signerv1.NewSignerServiceClient(conn)
}

func TestGRPCSignCarriesTypedErrors(t *testing.T) {
	svc := &stubSigner{signFn: func(context.Context, signer.SignRequest) (*signer.SignedResult, error) {
		return nil, apierrors.New(apierrors.CodeNoUIRegistered, "no ui registered to approve the request")
	}}
	client := dialServer(t, NewGRPCServer(svc, newTestRegistry()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := client.Sign(ctx, &signerv1.SignRequest{Kind: signerv1.KindData, Payload: []byte(`{}`)})
	require.Error(t, err)
	require.Equal(t, apierrors.CodeNoUIRegistered, apierrors.CodeOf(apierrors.FromGRPC(err)))
}

func TestGRPCSignSuccess(t *testing.T) {
	account := common.HexToAddress("0x1111111111111111111111111111111111111111")
	svc := &stubSigner{signFn: func(_ context.Context, req signer.SignRequest) (*signer.SignedResult, error) {
		require.Equal(t, signer.KindTransaction, req.Kind)
		require.Equal(t, "pay rent", req.Summary)
		return &signer.SignedResult{
			CorrelationID: "corr-1",
			Account:       account,
			Signature:     []byte{1, 2, 3},
			SignedTx:      []byte{0x02, 0xf8},
			TxHash:        common.HexToHash("0xabc"),
		}, nil
	}}
	client := dialServer(t, NewGRPCServer(svc, newTestRegistry()))

	resp, err := client.Sign(context.Background(), &signerv1.SignRequest{Kind: signerv1.KindTransaction, Payload: []byte(`{}`), Summary: "pay rent"})
	require.NoError(t, err)
	require.Equal(t, "corr-1", resp.GetCorrelationId())
	require.Equal(t, account.Hex(), resp.GetAccount())
	require.Equal(t, common.HexToHash("0xabc").Hex(), resp.GetTxHash())
}

func TestGRPCSignRejectsEmptyPayload(t *testing.T) {
	client := dialServer(t, NewGRPCServer(&stubSigner{}, newTestRegistry()))
	_, err := client.Sign(context.Background(), &signerv1.SignRequest{Kind: signerv1.KindData})
	require.Equal(t, apierrors.CodeInvalidArgument, apierrors.CodeOf(apierrors.FromGRPC(err)))
}

func TestGRPCRegistrationLifecycle(t *testing.T) {
	client := dialServer(t, NewGRPCServer(&stubSigner{}, newTestRegistry()))
	ctx := context.Background()

	_, err := client.Register(ctx, &signerv1.RegisterRequest{CallbackEndpoint: "unix:///tmp/ui.sock"})
	require.Equal(t, apierrors.CodeInvalidArgument, apierrors.CodeOf(apierrors.FromGRPC(err)))

	reg, err := client.Register(ctx, &signerv1.RegisterRequest{
		CallbackEndpoint: "unix:///tmp/ui.sock",
		Capabilities:     []string{signerv1.CapabilityCredentialPrompt},
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.GetRegistrationId())
	require.Positive(t, reg.GetTtlMs())

	renewed, err := client.Renew(ctx, &signerv1.RenewRequest{RegistrationId: reg.GetRegistrationId()})
	require.NoError(t, err)
	require.GreaterOrEqual(t, renewed.GetExpiresAtUnixMs(), reg.GetExpiresAtUnixMs())

	_, err = client.Deregister(ctx, &signerv1.DeregisterRequest{RegistrationId: reg.GetRegistrationId()})
	require.NoError(t, err)
	_, err = client.Renew(ctx, &signerv1.RenewRequest{RegistrationId: reg.GetRegistrationId()})
	require.Equal(t, apierrors.CodeNotFound, apierrors.CodeOf(apierrors.FromGRPC(err)))
}

func TestSubmitCredentialRequiresSecureChannel(t *testing.T) {
	svc := &stubSigner{}
	client := dialServer(t, NewGRPCServer(svc, newTestRegistry()))

	_, err := client.SubmitCredential(context.Background(), &signerv1.SubmitCredentialRequest{CorrelationId: "c1", Credential: []byte("pw")})
	require.Equal(t, apierrors.CodeInsecureChannel, apierrors.CodeOf(apierrors.FromGRPC(err)))
	require.Empty(t, svc.submitted)
}

func TestSubmitCredentialOverUnixSocket(t *testing.T) {
	svc := &stubSigner{}
	srv := NewGRPCServer(svc, newTestRegistry())
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.UnixAddr{Name: "/tmp/jadesigner.sock", Net: "unix"}})

	_, err := srv.SubmitCredential(ctx, &signerv1.SubmitCredentialRequest{CorrelationId: "c1", Credential: []byte("pw")})
	require.NoError(t, err)
	require.Equal(t, []byte("pw"), svc.submitted["c1"])

	secret := []byte("pw")
	_, err = srv.SubmitCredential(ctx, &signerv1.SubmitCredentialRequest{Credential: secret})
	require.Error(t, err)
	require.Equal(t, []byte{0, 0}, secret)
}

func TestSubmitCredentialInsecureAllowed(t *testing.T) {
	svc := &stubSigner{}
	client := dialServer(t, NewGRPCServer(svc, newTestRegistry(), WithInsecureCredentials(true)))

	_, err := client.SubmitCredential(context.Background(), &signerv1.SubmitCredentialRequest{CorrelationId: "c1", Credential: []byte("pw")})
	require.NoError(t, err)
	_, err = client.CancelRequest(context.Background(), &signerv1.CancelRequestRequest{CorrelationId: "c2", Reason: "nope"})
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Equal(t, []byte("pw"), svc.submitted["c1"])
	require.Equal(t, "nope", svc.cancelled["c2"])
}
