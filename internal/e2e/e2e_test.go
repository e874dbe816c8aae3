// Package e2e 把 signer、UI 与应用客户端通过真实 socket 串起来测试。
package e2e

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	signerapi "github.com/aegis-sign/jadesigner/internal/api"
	"github.com/aegis-sign/jadesigner/internal/appclient"
	"github.com/aegis-sign/jadesigner/internal/discovery"
	"github.com/aegis-sign/jadesigner/internal/infra/connpool"
	"github.com/aegis-sign/jadesigner/internal/keystore"
	"github.com/aegis-sign/jadesigner/internal/ledger"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/aegis-sign/jadesigner/internal/ui"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

const passphrase = "correct horse battery staple"

type stack struct {
	dir       string
	account   common.Address
	registry  *registry.Registry
	ledger    *ledger.Ledger
	discovery *discovery.Client
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startSigner 启动 signer 的 gRPC 服务与本地发现应答，均监听在临时目录的 unix socket 上。
func startSigner(t *testing.T) *stack {
	t.Helper()
	dir, err := os.MkdirTemp("", "jade")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	logger := quietLogger()

	ks, err := keystore.Open(filepath.Join(dir, "keys"), true, keystore.WithLogger(logger))
	require.NoError(t, err)
	acct, err := ks.NewAccount(passphrase)
	require.NoError(t, err)

	led, err := ledger.Open(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = led.Close() })

	pool, err := connpool.NewPool(connpool.DefaultConfig(), connpool.WithRegisterer(prometheus.NewRegistry()), connpool.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	prompter := signer.NewGRPCPrompter(pool, logger)
	reg := registry.New(registry.NewMemoryStore(registry.NewRealClock()), registry.Config{TTL: 5 * time.Second, Logger: logger, OnRetire: prompter.Retire})

	backend, err := signer.New(signer.NewKeystoreUnlocker(ks), reg, prompter, signer.Config{
		RequestTimeout: 5 * time.Second,
		Logger:         logger,
		Recorder:       led,
	})
	require.NoError(t, err)
	t.Cleanup(backend.Close)

	signerEndpoint := "unix:" + filepath.Join(dir, "signer.sock")
	lis, err := transport.ListenString(signerEndpoint)
	require.NoError(t, err)
	srv := grpc.NewServer()
	signerv1.RegisterSignerServiceServer(srv, signerapi.NewGRPCServer(backend, reg, signerapi.WithLogger(logger)))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	version, err := discovery.ParseVersion(discovery.ProtocolVersion)
	require.NoError(t, err)
	discoveryEndpoint := "unix:" + filepath.Join(dir, "discovery.sock")
	dlis, err := transport.ListenString(discoveryEndpoint)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	responder := discovery.NewResponder(signerEndpoint, version, discovery.WithResponderLogger(logger))
	go func() { _ = responder.ServeStream(ctx, dlis) }()

	return &stack{
		dir:      dir,
		account:  acct.Address,
		registry: reg,
		ledger:   led,
		discovery: discovery.NewClient(
			[]discovery.Transport{discovery.StreamTransport{Endpoint: discoveryEndpoint}},
			discovery.WithTimeout(time.Second),
			discovery.WithLogger(logger),
		),
	}
}

// startUI 启动 UI 前端并等待其完成注册。
func (s *stack) startUI(t *testing.T, prompter ui.Prompter) {
	t.Helper()
	agent, err := ui.NewAgent(s.discovery, prompter, ui.Config{
		CallbackEndpoint: "unix:" + filepath.Join(s.dir, "ui.sock"),
		PromptTimeout:    3 * time.Second,
		Logger:           quietLogger(),
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = agent.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-agent.Ready():
	case <-time.After(3 * time.Second):
		t.Fatal("ui did not register")
	}
}

func (s *stack) client(t *testing.T) *appclient.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := appclient.Discover(ctx, s.discovery, discovery.ProtocolVersion, appclient.Options{Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func (s *stack) transfer() signer.TxArgs {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	return signer.TxArgs{
		From:     s.account,
		To:       &to,
		Gas:      hexutil.Uint64(21000),
		GasPrice: (*hexutil.Big)(big.NewInt(1_000_000_000)),
		Value:    (*hexutil.Big)(big.NewInt(1)),
		Nonce:    hexutil.Uint64(7),
		ChainID:  (*hexutil.Big)(big.NewInt(1337)),
	}
}

func answer(secret string) ui.Prompter {
	return ui.PrompterFunc(func(context.Context, ui.Request) (ui.Answer, error) {
		return ui.Answer{Approved: true, Secret: []byte(secret)}, nil
	})
}

func signTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func TestApprovedTransactionIsSignedBySelectedAccount(t *testing.T) {
	s := startSigner(t)
	seen := make(chan ui.Request, 1)
	s.startUI(t, ui.PrompterFunc(func(_ context.Context, req ui.Request) (ui.Answer, error) {
		seen <- req
		return ui.Answer{Approved: true, Secret: []byte(passphrase)}, nil
	}))

	ctx, cancel := signTimeout()
	defer cancel()
	res, err := s.client(t).SignTransaction(ctx, s.transfer(), "rent for october")
	require.NoError(t, err)
	require.Equal(t, s.account, res.Account)

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(res.SignedTx))
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), &tx)
	require.NoError(t, err)
	require.Equal(t, s.account, sender)
	require.Equal(t, tx.Hash(), res.TxHash)

	req := <-seen
	require.Equal(t, res.CorrelationID, req.CorrelationID)
	require.Contains(t, req.Summary, "rent for october")
	require.Equal(t, s.account, req.Account)

	entry, err := s.ledger.Get(context.Background(), res.CorrelationID)
	require.NoError(t, err)
	require.Equal(t, ledger.OutcomeSigned, entry.Outcome)
}

func TestSignWithoutUIFailsFast(t *testing.T) {
	s := startSigner(t)

	ctx, cancel := signTimeout()
	defer cancel()
	start := time.Now()
	_, err := s.client(t).SignTransaction(ctx, s.transfer(), "")
	require.Equal(t, apierrors.CodeNoUIRegistered, apierrors.CodeOf(err))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestRejectedPromptReturnsUserCancelled(t *testing.T) {
	s := startSigner(t)
	s.startUI(t, ui.PrompterFunc(func(context.Context, ui.Request) (ui.Answer, error) {
		return ui.Answer{Reason: "not today"}, nil
	}))

	ctx, cancel := signTimeout()
	defer cancel()
	_, err := s.client(t).SignTransaction(ctx, s.transfer(), "")
	require.Equal(t, apierrors.CodeUserCancelled, apierrors.CodeOf(err))
}

func TestWrongPassphraseReturnsAuthenticationFailed(t *testing.T) {
	s := startSigner(t)
	s.startUI(t, answer("wrong"))

	ctx, cancel := signTimeout()
	defer cancel()
	_, err := s.client(t).SignTransaction(ctx, s.transfer(), "")
	require.Equal(t, apierrors.CodeAuthenticationFailed, apierrors.CodeOf(err))
}

func TestSignDataRecoversAccount(t *testing.T) {
	s := startSigner(t)
	s.startUI(t, answer(passphrase))

	ctx, cancel := signTimeout()
	defer cancel()
	res, err := s.client(t).SignData(ctx, signer.DataArgs{From: s.account, Data: hexutil.Bytes("hello")}, "login")
	require.NoError(t, err)
	require.Len(t, res.Signature, 65)
	require.Empty(t, res.SignedTx)
}

func TestDiscoveryRejectsOtherMajorVersion(t *testing.T) {
	s := startSigner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := appclient.Discover(ctx, s.discovery, "2.0.0", appclient.Options{})
	require.Equal(t, apierrors.CodeIncompatibleVersion, apierrors.CodeOf(err))
}

func TestUIRegistrationIsVisibleToSigner(t *testing.T) {
	s := startSigner(t)
	s.startUI(t, answer(passphrase))

	rec, err := s.registry.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.True(t, rec.Has(registry.CapabilityCredentialPrompt))
}
