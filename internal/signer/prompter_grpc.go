package signer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/infra/connpool"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
)

// GRPCPrompter 通过连接池调用 UI 的 OnSignRequested 回调。
type GRPCPrompter struct {
	pool   *connpool.Pool
	logger *slog.Logger

	mu      sync.Mutex
	targets map[string]string
}

// NewGRPCPrompter 构造 GRPCPrompter，pool 由调用方关闭。
func NewGRPCPrompter(pool *connpool.Pool, logger *slog.Logger) *GRPCPrompter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCPrompter{pool: pool, logger: logger, targets: make(map[string]string)}
}

// Prompt 实现 Prompter。UI 拒绝接收视为用户取消。
func (p *GRPCPrompter) Prompt(ctx context.Context, rec registry.Record, prompt Prompt) error {
	p.ensureTarget(rec)
	if health, err := p.pool.Health(rec.ID); err == nil && health == connpool.HealthDrained {
		p.logger.Warn("ui callback target retired", slog.String("registration_id", rec.ID))
		return apierrors.New(apierrors.CodeServiceUnavailable, "ui registration retired")
	}
	lease, err := p.pool.Acquire(ctx, rec.ID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		health, _ := p.pool.Health(rec.ID)
		p.logger.Warn("acquire ui callback connection failed",
			slog.String("registration_id", rec.ID),
			slog.String("health", string(health)),
			slog.Any("error", err))
		return apierrors.New(apierrors.CodeServiceUnavailable, "ui callback unreachable")
	}
	ack, err := lease.UIClient().OnSignRequested(ctx, &signerv1.SignPrompt{
		CorrelationId:  prompt.CorrelationID,
		Summary:        prompt.Summary,
		Account:        prompt.Account.Hex(),
		Kind:           string(prompt.Kind),
		DeadlineUnixMs: prompt.Deadline.UnixMilli(),
	})
	lease.Release(err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Warn("ui callback failed", slog.String("registration_id", rec.ID), slog.Any("error", err))
		return apierrors.New(apierrors.CodeServiceUnavailable, "ui callback unreachable")
	}
	if !ack.GetAccepted() {
		p.logger.Info("ui declined prompt", slog.String("correlation_id", prompt.CorrelationID), slog.String("reason", ack.GetReason()))
		return apierrors.New(apierrors.CodeUserCancelled, "ui declined the request")
	}
	return nil
}

// Retire 摘除已失效注册的回调目标，正在等待连接的 Prompt 立即失败。
// 目标保留在池中直到下一条注册出现，以便迟到的 Prompt 快速失败。
func (p *GRPCPrompter) Retire(registrationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.targets[registrationID]; !ok {
		return
	}
	if err := p.pool.Drain(registrationID); err != nil {
		p.logger.Debug("drain ui callback target", slog.String("registration_id", registrationID), slog.Any("error", err))
		return
	}
	p.logger.Info("ui callback target drained", slog.String("registration_id", registrationID))
}

// ensureTarget 保证连接池只保留当前注册对应的目标。
func (p *GRPCPrompter) ensureTarget(rec registry.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if endpoint, ok := p.targets[rec.ID]; ok && endpoint == rec.CallbackEndpoint {
		return
	}
	for id := range p.targets {
		if id != rec.ID {
			p.pool.RemoveTarget(id)
			delete(p.targets, id)
		}
	}
	p.pool.RegisterTarget(connpool.Target{ID: rec.ID, Endpoint: rec.CallbackEndpoint})
	p.targets[rec.ID] = rec.CallbackEndpoint
}
