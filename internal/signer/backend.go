package signer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aegis-sign/jadesigner/internal/credential"
	"github.com/aegis-sign/jadesigner/internal/ledger"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultRequestTimeout 是从通知 UI 起等待用户回应并完成签名的上限。
const DefaultRequestTimeout = 2 * time.Minute

// Config 控制 Backend 行为。
type Config struct {
	RequestTimeout time.Duration
	// MaxQueue 是解锁队列容量，超出返回 RETRY_LATER。
	MaxQueue int
	// AdmissionRate 为每秒允许进入的签名请求数，<=0 表示不限。
	AdmissionRate  float64
	AdmissionBurst int

	Logger      *slog.Logger
	Metrics     *Metrics
	Recorder    OutcomeRecorder
	IDGenerator func() string
}

func (c Config) normalize() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxQueue <= 0 {
		c.MaxQueue = defaultMaxQueue
	}
	if c.AdmissionBurst <= 0 {
		c.AdmissionBurst = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string { return uuid.NewString() }
	}
	return c
}

// Backend 是签名后端，负责请求编排。
type Backend struct {
	cfg           Config
	unlocker      Unlocker
	registrations RegistrationSource
	prompter      Prompter
	queue         *unlockQueue
	limiter       *rate.Limiter
	logger        *slog.Logger
	metrics       *Metrics

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

type response struct {
	env       *credential.Envelope
	cancelled bool
	reason    string
}

type pendingRequest struct {
	id        string
	account   string
	kind      PayloadKind
	startedAt time.Time
	deadline  time.Time

	// 以下字段由 Backend.mu 保护。
	answered  bool
	responses chan response
}

// New 创建 Backend 并启动解锁 worker。
func New(unlocker Unlocker, registrations RegistrationSource, prompter Prompter, cfg Config) (*Backend, error) {
	if unlocker == nil {
		return nil, errors.New("unlocker is required")
	}
	if registrations == nil {
		return nil, errors.New("registration source is required")
	}
	if prompter == nil {
		return nil, errors.New("prompter is required")
	}
	cfg = cfg.normalize()
	b := &Backend{
		cfg:           cfg,
		unlocker:      unlocker,
		registrations: registrations,
		prompter:      prompter,
		queue:         newUnlockQueue(cfg.MaxQueue, cfg.Metrics),
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		pending:       make(map[string]*pendingRequest),
	}
	if cfg.AdmissionRate > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.AdmissionRate), cfg.AdmissionBurst)
	}
	return b, nil
}

// Close 停止解锁 worker。
func (b *Backend) Close() {
	b.queue.Close()
}

// RequestTimeout 返回生效的请求超时。
func (b *Backend) RequestTimeout() time.Duration { return b.cfg.RequestTimeout }

// Sign 处理一次签名请求，阻塞直到得到唯一终态。
func (b *Backend) Sign(ctx context.Context, req SignRequest) (*SignedResult, error) {
	payload, err := DecodePayload(req.Kind, req.Payload)
	if err != nil {
		return nil, apierrors.New(apierrors.CodeInvalidArgument, err.Error())
	}
	if checker, ok := b.unlocker.(AccountChecker); ok && !checker.Has(payload.Account()) {
		return nil, apierrors.New(apierrors.CodeInvalidKey, fmt.Sprintf("account %s is not in the keystore", payload.Account().Hex()))
	}
	if b.limiter != nil && !b.limiter.Allow() {
		return nil, apierrors.New(apierrors.CodeRetryLater, "too many sign requests").WithRetryAfter(time.Second)
	}

	p := b.track(payload)
	defer b.retire(p.id)
	logger := b.logger.With(slog.String("correlation_id", p.id))
	logger.Info("sign request received", slog.String("kind", string(p.kind)), slog.String("account", p.account))

	result, err := b.process(ctx, p, payload, req.Summary, logger)
	b.finish(p, result, err, logger)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *Backend) process(ctx context.Context, p *pendingRequest, payload Payload, note string, logger *slog.Logger) (*SignedResult, error) {
	rec, err := b.registrations.Current(ctx)
	if err != nil {
		logger.Error("load ui registration failed", slog.Any("error", err))
		return nil, apierrors.New(apierrors.CodeServiceUnavailable, "registration store unavailable")
	}
	if rec == nil {
		return nil, apierrors.New(apierrors.CodeNoUIRegistered, "no ui registered to approve the request")
	}

	waitCtx, cancel := context.WithDeadline(ctx, p.deadline)
	defer cancel()

	summary := payload.Summary()
	if note != "" {
		summary += "\napplication note: " + note
	}
	prompt := Prompt{
		CorrelationID: p.id,
		Summary:       summary,
		Account:       payload.Account(),
		Kind:          payload.Kind(),
		Deadline:      p.deadline,
	}
	if err := b.prompter.Prompt(waitCtx, *rec, prompt); err != nil {
		if waitCtx.Err() != nil {
			return nil, b.expired(ctx, p.id)
		}
		if apiErr, ok := apierrors.FromError(err); ok {
			return nil, apiErr
		}
		logger.Warn("ui callback failed", slog.String("registration_id", rec.ID), slog.Any("error", err))
		return nil, apierrors.New(apierrors.CodeServiceUnavailable, "ui callback unreachable")
	}

	var resp response
	select {
	case resp = <-p.responses:
	case <-waitCtx.Done():
		return nil, b.expired(ctx, p.id)
	}
	if resp.cancelled {
		logger.Info("sign request cancelled by user", slog.String("reason", resp.reason))
		return nil, apierrors.New(apierrors.CodeUserCancelled, "request cancelled by user")
	}

	env := resp.env
	defer env.Discard()
	var result *SignedResult
	err = b.queue.Do(waitCtx, func(ctx context.Context) error {
		return env.Use(func(secret []byte) error {
			start := time.Now()
			key, err := b.unlocker.Unlock(ctx, payload.Account(), secret)
			b.metrics.observeUnlock(time.Since(start), err == nil)
			if err != nil {
				return err
			}
			defer key.Zero()
			result, err = payload.Sign(key)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, b.expired(ctx, p.id)
		}
		if apiErr, ok := apierrors.FromError(err); ok {
			return nil, apiErr
		}
		logger.Error("sign failed", slog.Any("error", err))
		return nil, apierrors.New(apierrors.CodeInternal, "internal error")
	}
	result.CorrelationID = p.id
	return result, nil
}

// expired 立即退役请求，使之后到达的凭证被拒绝。调用方主动取消与请求自身超时分开上报。
func (b *Backend) expired(ctx context.Context, id string) error {
	b.retire(id)
	if errors.Is(ctx.Err(), context.Canceled) {
		return apierrors.New(apierrors.CodeRequestCancelled, "request cancelled by caller")
	}
	return apierrors.New(apierrors.CodeRequestTimedOut, "request timed out waiting for the user")
}

// SubmitCredential 将 UI 回传的凭证交给对应请求。无论结果如何，调用方都不再拥有 secret：
// 被拒绝时 secret 立即清零。
func (b *Backend) SubmitCredential(ctx context.Context, correlationID string, secret []byte) error {
	env, err := credential.New(correlationID, secret)
	if err != nil {
		return apierrors.New(apierrors.CodeInvalidArgument, "credential is required")
	}
	if err := b.deliver(correlationID, response{env: env}); err != nil {
		env.Discard()
		return err
	}
	return nil
}

// CancelRequest 表示用户拒绝了请求。
func (b *Backend) CancelRequest(ctx context.Context, correlationID, reason string) error {
	return b.deliver(correlationID, response{cancelled: true, reason: reason})
}

func (b *Backend) deliver(correlationID string, resp response) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[correlationID]
	if !ok || !time.Now().Before(p.deadline) {
		b.metrics.incRejectedResponse("not_found")
		b.logger.Warn("response for unknown or retired request rejected", slog.String("correlation_id", correlationID))
		return apierrors.New(apierrors.CodeNotFound, "no pending request with this correlation id")
	}
	if p.answered {
		b.metrics.incRejectedResponse("already_answered")
		return apierrors.New(apierrors.CodeAlreadyAnswered, "request already answered")
	}
	p.answered = true
	// 容量为 1 且仅在首次回应时写入，不会阻塞。
	p.responses <- resp
	return nil
}

func (b *Backend) track(payload Payload) *pendingRequest {
	now := time.Now()
	p := &pendingRequest{
		id:        b.cfg.IDGenerator(),
		account:   payload.Account().Hex(),
		kind:      payload.Kind(),
		startedAt: now,
		deadline:  now.Add(b.cfg.RequestTimeout),
		responses: make(chan response, 1),
	}
	b.mu.Lock()
	b.pending[p.id] = p
	b.mu.Unlock()
	b.metrics.incPending()
	return p
}

// retire 移除请求并丢弃尚未被取走的凭证；可重复调用。
func (b *Backend) retire(id string) {
	b.mu.Lock()
	p, ok := b.pending[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.pending, id)
	var leftover *credential.Envelope
	select {
	case resp := <-p.responses:
		leftover = resp.env
	default:
	}
	b.mu.Unlock()
	leftover.Discard()
	b.metrics.decPending()
}

func (b *Backend) finish(p *pendingRequest, result *SignedResult, err error, logger *slog.Logger) {
	entry := ledger.Entry{
		CorrelationID: p.id,
		Account:       p.account,
		Kind:          string(p.kind),
		StartedAt:     p.startedAt,
		FinishedAt:    time.Now(),
	}
	switch {
	case err == nil:
		entry.Outcome = ledger.OutcomeSigned
		if result.TxHash != (common.Hash{}) {
			entry.TxHash = result.TxHash.Hex()
		}
		logger.Info("sign request completed", slog.Duration("elapsed", entry.FinishedAt.Sub(entry.StartedAt)))
	case apierrors.HasCode(err, apierrors.CodeRequestTimedOut):
		entry.Outcome = ledger.OutcomeTimedOut
		entry.Code = string(apierrors.CodeRequestTimedOut)
		logger.Warn("sign request timed out")
	case apierrors.HasCode(err, apierrors.CodeRequestCancelled):
		entry.Outcome = ledger.OutcomeAbandoned
		entry.Code = string(apierrors.CodeRequestCancelled)
		logger.Info("sign request abandoned by caller")
	default:
		entry.Outcome = ledger.OutcomeRejected
		entry.Code = string(apierrors.CodeOf(err))
		logger.Info("sign request rejected", slog.String("code", entry.Code))
	}
	b.metrics.incRequest(entry.Outcome, entry.Code)
	if b.cfg.Recorder == nil {
		return
	}
	// 记录与调用方 ctx 解耦，取消的请求也要留下终态。
	recCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.cfg.Recorder.Record(recCtx, entry); err != nil {
		logger.Error("record sign outcome failed", slog.Any("error", err))
	}
}
