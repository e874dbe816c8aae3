package signer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/infra/connpool"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type recordingUI struct {
	signerv1.UnimplementedUIServiceServer
	prompts chan *signerv1.SignPrompt
	accept  bool
}

func (r *recordingUI) OnSignRequested(_ context.Context, in *signerv1.SignPrompt) (*signerv1.PromptAck, error) {
	r.prompts <- in
	if !r.accept {
		return &signerv1.PromptAck{Accepted: false, Reason: "busy"}, nil
	}
	return &signerv1.PromptAck{Accepted: true}, nil
}

func newBufPool(t *testing.T, ui *recordingUI) *connpool.Pool {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	signerv1.RegisterUIServiceServer(srv, ui)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	cfg := connpool.DefaultConfig()
	cfg.HealthCheckInterval = time.Hour
	pool, err := connpool.NewPool(cfg,
		connpool.WithRegisterer(prometheus.NewRegistry()),
		connpool.WithDialer(func(ctx context.Context, target connpool.Target, _ connpool.Config) (*grpc.ClientConn, error) {
			return grpc.DialContext(ctx, target.Endpoint,
				grpc.WithTransportCredentials(insecure.NewCredentials()),
				grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
			)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestGRPCPrompterDeliversSummaryOnly(t *testing.T) {
	ui := &recordingUI{prompts: make(chan *signerv1.SignPrompt, 1), accept: true}
	prompter := NewGRPCPrompter(newBufPool(t, ui), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	deadline := time.Now().Add(time.Minute)
	account := common.HexToAddress("0x1111111111111111111111111111111111111111")
	err := prompter.Prompt(ctx, registry.Record{ID: "reg-1", CallbackEndpoint: "buf"}, Prompt{
		CorrelationID: "corr-1",
		Summary:       "send 1 wei",
		Account:       account,
		Kind:          KindTransaction,
		Deadline:      deadline,
	})
	require.NoError(t, err)

	got := <-ui.prompts
	require.Equal(t, "corr-1", got.GetCorrelationId())
	require.Equal(t, "send 1 wei", got.GetSummary())
	require.Equal(t, account.Hex(), got.GetAccount())
	require.Equal(t, deadline.UnixMilli(), got.GetDeadlineUnixMs())
}

func TestGRPCPrompterDeclinedAck(t *testing.T) {
	ui := &recordingUI{prompts: make(chan *signerv1.SignPrompt, 1)}
	prompter := NewGRPCPrompter(newBufPool(t, ui), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := prompter.Prompt(ctx, registry.Record{ID: "reg-1", CallbackEndpoint: "buf"}, Prompt{CorrelationID: "corr-2"})
	require.True(t, apierrors.HasCode(err, apierrors.CodeUserCancelled))
}

func TestGRPCPrompterSwitchesTargetOnNewRegistration(t *testing.T) {
	ui := &recordingUI{prompts: make(chan *signerv1.SignPrompt, 2), accept: true}
	pool := newBufPool(t, ui)
	prompter := NewGRPCPrompter(pool, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, prompter.Prompt(ctx, registry.Record{ID: "reg-1", CallbackEndpoint: "buf"}, Prompt{CorrelationID: "a"}))
	require.NoError(t, prompter.Prompt(ctx, registry.Record{ID: "reg-2", CallbackEndpoint: "buf"}, Prompt{CorrelationID: "b"}))

	_, err := pool.Health("reg-1")
	require.ErrorIs(t, err, connpool.ErrTargetNotFound)
	_, err = pool.Health("reg-2")
	require.NoError(t, err)
}

func TestGRPCPrompterFailsFastForRetiredRegistration(t *testing.T) {
	ui := &recordingUI{prompts: make(chan *signerv1.SignPrompt, 2), accept: true}
	pool := newBufPool(t, ui)
	prompter := NewGRPCPrompter(pool, nil)
	reg := registry.New(registry.NewMemoryStore(registry.NewRealClock()), registry.Config{OnRetire: prompter.Retire})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rec, err := reg.Register(ctx, "unix:///tmp/jadesigner-ui-a.sock", []registry.Capability{registry.CapabilityCredentialPrompt})
	require.NoError(t, err)
	rec.CallbackEndpoint = "buf"
	require.NoError(t, prompter.Prompt(ctx, rec, Prompt{CorrelationID: "a"}))

	require.NoError(t, reg.Deregister(ctx, rec.ID))
	health, err := pool.Health(rec.ID)
	require.NoError(t, err)
	require.Equal(t, connpool.HealthDrained, health)

	// 注销前读到的注册不再触达 UI。
	err = prompter.Prompt(ctx, rec, Prompt{CorrelationID: "b"})
	require.True(t, apierrors.HasCode(err, apierrors.CodeServiceUnavailable), "unexpected error: %v", err)
	require.Len(t, ui.prompts, 1)

	require.NoError(t, prompter.Prompt(ctx, registry.Record{ID: "reg-next", CallbackEndpoint: "buf"}, Prompt{CorrelationID: "c"}))
	_, err = pool.Health(rec.ID)
	require.ErrorIs(t, err, connpool.ErrTargetNotFound)
}
