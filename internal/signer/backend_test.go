package signer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aegis-sign/jadesigner/internal/keystore"
	"github.com/aegis-sign/jadesigner/internal/ledger"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type promptFunc func(ctx context.Context, rec registry.Record, p Prompt) error

func (f promptFunc) Prompt(ctx context.Context, rec registry.Record, p Prompt) error {
	return f(ctx, rec, p)
}

type staticRegistrations struct {
	rec *registry.Record
}

func (s staticRegistrations) Current(context.Context) (*registry.Record, error) {
	return s.rec, nil
}

func registeredUI(t *testing.T) RegistrationSource {
	t.Helper()
	reg := registry.New(registry.NewMemoryStore(registry.NewRealClock()), registry.Config{})
	_, err := reg.Register(context.Background(), "unix:///tmp/jadesigner-ui.sock", []registry.Capability{registry.CapabilityCredentialPrompt})
	require.NoError(t, err)
	return reg
}

type ecdsaKey struct {
	priv   *ecdsa.PrivateKey
	zeroed *atomic.Bool
}

func (k ecdsaKey) Address() common.Address { return crypto.PubkeyToAddress(k.priv.PublicKey) }
func (k ecdsaKey) Sign(hash []byte) ([]byte, error) {
	return crypto.Sign(hash, k.priv)
}
func (k ecdsaKey) Zero() { k.zeroed.Store(true) }

// fakeUnlocker 记录调用次数与并发度。
type fakeUnlocker struct {
	priv     *ecdsa.PrivateKey
	password string
	hold     time.Duration

	calls     atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32
	zeroed    atomic.Bool
}

func newFakeUnlocker(t *testing.T, password string) *fakeUnlocker {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &fakeUnlocker{priv: priv, password: password}
}

func (u *fakeUnlocker) address() common.Address { return crypto.PubkeyToAddress(u.priv.PublicKey) }

func (u *fakeUnlocker) Unlock(ctx context.Context, account common.Address, secret []byte) (Key, error) {
	u.calls.Add(1)
	n := u.active.Add(1)
	defer u.active.Add(-1)
	for {
		cur := u.maxActive.Load()
		if n <= cur || u.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}
	if u.hold > 0 {
		time.Sleep(u.hold)
	}
	if account != u.address() {
		return nil, apierrors.New(apierrors.CodeInvalidKey, "account not found")
	}
	if string(secret) != u.password {
		return nil, apierrors.New(apierrors.CodeAuthenticationFailed, "credential rejected")
	}
	return ecdsaKey{priv: u.priv, zeroed: &u.zeroed}, nil
}

func newTestBackend(t *testing.T, unlocker Unlocker, regs RegistrationSource, prompter Prompter, mutate func(*Config)) *Backend {
	t.Helper()
	cfg := Config{Metrics: NewMetrics(prometheus.NewRegistry())}
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := New(unlocker, regs, prompter, cfg)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func legacyTx(t *testing.T, from common.Address) []byte {
	t.Helper()
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	raw, err := TxArgs{
		From:     from,
		To:       &to,
		Gas:      21000,
		GasPrice: (*hexutil.Big)(big.NewInt(1_000_000_000)),
		Value:    (*hexutil.Big)(big.NewInt(1)),
		Nonce:    3,
		ChainID:  (*hexutil.Big)(big.NewInt(1337)),
	}.Encode()
	require.NoError(t, err)
	return raw
}

func requireCode(t *testing.T, err error, code apierrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apierrors.CodeOf(err), "unexpected error: %v", err)
}

func TestSignEndToEndWithKeystore(t *testing.T) {
	store, err := keystore.Open(t.TempDir(), true)
	require.NoError(t, err)
	acct, err := store.NewAccount("correct horse")
	require.NoError(t, err)

	var b *Backend
	submitted := make(chan []byte, 1)
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		require.Contains(t, p.Summary, "chain 1337")
		require.Equal(t, acct.Address, p.Account)
		secret := []byte("correct horse")
		submitted <- secret
		go func() { _ = b.SubmitCredential(context.Background(), p.CorrelationID, secret) }()
		return nil
	})
	b = newTestBackend(t, NewKeystoreUnlocker(store), registeredUI(t), prompter, nil)

	res, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, acct.Address)})
	require.NoError(t, err)
	require.NotEmpty(t, res.CorrelationID)
	require.Equal(t, acct.Address, res.Account)

	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(res.SignedTx))
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), tx)
	require.NoError(t, err)
	require.Equal(t, acct.Address, sender)
	require.Equal(t, tx.Hash(), res.TxHash)

	secret := <-submitted
	require.Equal(t, make([]byte, len(secret)), secret, "credential must be cleared after signing")
	require.Empty(t, b.snapshot().Pending)
}

func TestSignDataRecoversAccount(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	var b *Backend
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		require.Equal(t, KindData, p.Kind)
		go func() { _ = b.SubmitCredential(context.Background(), p.CorrelationID, []byte("pw")) }()
		return nil
	})
	b = newTestBackend(t, unlocker, registeredUI(t), prompter, nil)

	msg := []byte("hello jadesigner")
	raw, err := DataArgs{From: unlocker.address(), Data: msg}.Encode()
	require.NoError(t, err)
	res, err := b.Sign(context.Background(), SignRequest{Kind: KindData, Payload: raw})
	require.NoError(t, err)
	require.Len(t, res.Signature, 65)
	require.Contains(t, []byte{27, 28}, res.Signature[64])

	sig := append([]byte(nil), res.Signature...)
	sig[64] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(msg), sig)
	require.NoError(t, err)
	require.Equal(t, unlocker.address(), crypto.PubkeyToAddress(*pub))
	require.True(t, unlocker.zeroed.Load())
}

func TestSignWithoutRegistrationFailsFast(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	var prompted atomic.Bool
	prompter := promptFunc(func(context.Context, registry.Record, Prompt) error {
		prompted.Store(true)
		return nil
	})
	b := newTestBackend(t, unlocker, staticRegistrations{}, prompter, func(c *Config) { c.RequestTimeout = time.Hour })

	start := time.Now()
	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, unlocker.address())})
	requireCode(t, err, apierrors.CodeNoUIRegistered)
	require.Less(t, time.Since(start), time.Second)
	require.False(t, prompted.Load())
	require.Zero(t, unlocker.calls.Load())
}

func TestSignCancelThenSucceed(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	var b *Backend
	var round atomic.Int32
	ids := make(chan string, 2)
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		ids <- p.CorrelationID
		if round.Add(1) == 1 {
			go func() { _ = b.CancelRequest(context.Background(), p.CorrelationID, "user declined") }()
			return nil
		}
		go func() { _ = b.SubmitCredential(context.Background(), p.CorrelationID, []byte("pw")) }()
		return nil
	})
	reg := prometheus.NewRegistry()
	b = newTestBackend(t, unlocker, registeredUI(t), prompter, func(c *Config) { c.Metrics = NewMetrics(reg) })

	payload := legacyTx(t, unlocker.address())
	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: payload})
	requireCode(t, err, apierrors.CodeUserCancelled)
	require.Zero(t, unlocker.calls.Load(), "cancellation must not unlock")

	res, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: payload})
	require.NoError(t, err)

	first, second := <-ids, <-ids
	require.NotEqual(t, first, second)
	require.Equal(t, second, res.CorrelationID)
	require.Equal(t, float64(1), testutil.ToFloat64(b.metrics.requests.WithLabelValues(ledger.OutcomeRejected, string(apierrors.CodeUserCancelled))))
	require.Equal(t, float64(1), testutil.ToFloat64(b.metrics.requests.WithLabelValues(ledger.OutcomeSigned, "none")))

	// 已结束的请求不再接受回应。
	requireCode(t, b.CancelRequest(context.Background(), first, ""), apierrors.CodeNotFound)
}

func TestSignTimeoutRejectsLateCredential(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	ids := make(chan string, 1)
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		ids <- p.CorrelationID
		return nil
	})
	led, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = led.Close() })
	b := newTestBackend(t, unlocker, registeredUI(t), prompter, func(c *Config) {
		c.RequestTimeout = 100 * time.Millisecond
		c.Recorder = led
	})

	_, err = b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, unlocker.address())})
	requireCode(t, err, apierrors.CodeRequestTimedOut)

	id := <-ids
	late := []byte("pw")
	requireCode(t, b.SubmitCredential(context.Background(), id, late), apierrors.CodeNotFound)
	require.Equal(t, make([]byte, 2), late, "rejected credential must be cleared")
	require.Zero(t, unlocker.calls.Load())

	entry, err := led.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, ledger.OutcomeTimedOut, entry.Outcome)
	require.Equal(t, string(apierrors.CodeRequestTimedOut), entry.Code)
}

func TestSignCallerCancelIsNotReportedAsTimeout(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	ids := make(chan string, 1)
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		ids <- p.CorrelationID
		return nil
	})
	led, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = led.Close() })
	b := newTestBackend(t, unlocker, registeredUI(t), prompter, func(c *Config) {
		c.RequestTimeout = time.Minute
		c.Recorder = led
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err = b.Sign(ctx, SignRequest{Kind: KindTransaction, Payload: legacyTx(t, unlocker.address())})
	requireCode(t, err, apierrors.CodeRequestCancelled)

	id := <-ids
	requireCode(t, b.SubmitCredential(context.Background(), id, []byte("pw")), apierrors.CodeNotFound)
	require.Zero(t, unlocker.calls.Load())

	entry, err := led.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, ledger.OutcomeAbandoned, entry.Outcome)
	require.Equal(t, string(apierrors.CodeRequestCancelled), entry.Code)
}

func TestSignWrongCredentialIsNotRetried(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	var b *Backend
	wrong := []byte("nope")
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		go func() { _ = b.SubmitCredential(context.Background(), p.CorrelationID, wrong) }()
		return nil
	})
	b = newTestBackend(t, unlocker, registeredUI(t), prompter, nil)

	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, unlocker.address())})
	requireCode(t, err, apierrors.CodeAuthenticationFailed)
	require.Equal(t, int32(1), unlocker.calls.Load())
	require.Equal(t, make([]byte, 4), wrong)
}

func TestSecondResponseIsRejected(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	unlocker.hold = 200 * time.Millisecond
	var b *Backend
	second := make(chan error, 1)
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		go func() {
			_ = b.SubmitCredential(context.Background(), p.CorrelationID, []byte("pw"))
			second <- b.CancelRequest(context.Background(), p.CorrelationID, "changed my mind")
		}()
		return nil
	})
	b = newTestBackend(t, unlocker, registeredUI(t), prompter, nil)

	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, unlocker.address())})
	require.NoError(t, err)
	requireCode(t, <-second, apierrors.CodeAlreadyAnswered)
}

func TestUnlockIsExclusive(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	unlocker.hold = 20 * time.Millisecond
	var b *Backend
	prompter := promptFunc(func(ctx context.Context, rec registry.Record, p Prompt) error {
		go func() { _ = b.SubmitCredential(context.Background(), p.CorrelationID, []byte("pw")) }()
		return nil
	})
	b = newTestBackend(t, unlocker, registeredUI(t), prompter, nil)

	payload := legacyTx(t, unlocker.address())
	const n = 6
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: payload})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(n), unlocker.calls.Load())
	require.Equal(t, int32(1), unlocker.maxActive.Load())
}

func TestSignRejectsUnknownAccountBeforePrompt(t *testing.T) {
	store, err := keystore.Open(t.TempDir(), true)
	require.NoError(t, err)
	prompter := promptFunc(func(context.Context, registry.Record, Prompt) error {
		t.Fatal("prompt must not be sent for an unknown account")
		return nil
	})
	b := newTestBackend(t, NewKeystoreUnlocker(store), registeredUI(t), prompter, nil)
	_, err = b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, common.HexToAddress("0x01"))})
	requireCode(t, err, apierrors.CodeInvalidKey)
}

func TestPromptDeclinedMapsToCancelled(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	prompter := promptFunc(func(context.Context, registry.Record, Prompt) error {
		return apierrors.New(apierrors.CodeUserCancelled, "ui declined the request")
	})
	b := newTestBackend(t, unlocker, registeredUI(t), prompter, nil)
	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: legacyTx(t, unlocker.address())})
	requireCode(t, err, apierrors.CodeUserCancelled)
}

func TestAdmissionRateLimit(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	b := newTestBackend(t, unlocker, staticRegistrations{}, promptFunc(func(context.Context, registry.Record, Prompt) error { return nil }), func(c *Config) {
		c.AdmissionRate = 0.001
		c.AdmissionBurst = 1
	})
	payload := legacyTx(t, unlocker.address())
	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: payload})
	requireCode(t, err, apierrors.CodeNoUIRegistered)
	_, err = b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: payload})
	requireCode(t, err, apierrors.CodeRetryLater)
}

func TestSignRejectsMalformedPayload(t *testing.T) {
	unlocker := newFakeUnlocker(t, "pw")
	b := newTestBackend(t, unlocker, registeredUI(t), promptFunc(func(context.Context, registry.Record, Prompt) error { return nil }), nil)
	_, err := b.Sign(context.Background(), SignRequest{Kind: KindTransaction, Payload: []byte(`{"from":"0x01"`)})
	requireCode(t, err, apierrors.CodeInvalidArgument)
	_, err = b.Sign(context.Background(), SignRequest{Kind: "blob", Payload: []byte(`{}`)})
	requireCode(t, err, apierrors.CodeInvalidArgument)
}
