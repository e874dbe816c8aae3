package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/credential"
	"github.com/ethereum/go-ethereum/common"
)

// responseTimeout 限制回传凭证或取消的 RPC 时长。
const responseTimeout = 5 * time.Second

type callbackServer struct {
	signerv1.UnimplementedUIServiceServer
	agent *Agent
}

// OnSignRequested 立即确认，再异步向用户展示。
func (s *callbackServer) OnSignRequested(_ context.Context, in *signerv1.SignPrompt) (*signerv1.PromptAck, error) {
	if in.GetCorrelationId() == "" {
		return &signerv1.PromptAck{Accepted: false, Reason: "correlation id is required"}, nil
	}
	client := s.agent.currentClient()
	if client == nil {
		return &signerv1.PromptAck{Accepted: false, Reason: "ui is not registered"}, nil
	}
	if !s.agent.trackPrompt() {
		return &signerv1.PromptAck{Accepted: false, Reason: "ui is shutting down"}, nil
	}
	go func() {
		defer s.agent.prompts.Done()
		s.agent.handlePrompt(client, in)
	}()
	return &signerv1.PromptAck{Accepted: true}, nil
}

func (a *Agent) handlePrompt(client signerv1.SignerServiceClient, in *signerv1.SignPrompt) {
	deadline := time.Now().Add(a.cfg.PromptTimeout)
	if ms := in.GetDeadlineUnixMs(); ms > 0 {
		if d := time.UnixMilli(ms); d.Before(deadline) {
			deadline = d
		}
	}
	a.mu.RLock()
	lifetime := a.lifetime
	a.mu.RUnlock()
	ctx, cancel := context.WithDeadline(lifetime, deadline)
	defer cancel()

	logger := a.logger.With(slog.String("correlation_id", in.GetCorrelationId()))
	answer, err := a.prompter.Prompt(ctx, Request{
		CorrelationID: in.GetCorrelationId(),
		Summary:       in.GetSummary(),
		Account:       common.HexToAddress(in.GetAccount()),
		Kind:          in.GetKind(),
		Deadline:      deadline,
	})
	if err != nil {
		logger.Info("prompt ended without an answer", slog.Any("error", err))
		answer = Answer{Reason: "no answer from user"}
	}

	rpcCtx, rpcCancel := context.WithTimeout(context.Background(), responseTimeout)
	defer rpcCancel()
	if !answer.Approved {
		credential.Zero(answer.Secret)
		reason := answer.Reason
		if reason == "" {
			reason = "rejected by user"
		}
		if _, err := client.CancelRequest(rpcCtx, &signerv1.CancelRequestRequest{CorrelationId: in.GetCorrelationId(), Reason: reason}); err != nil {
			logger.Warn("send cancellation failed", slog.Any("error", err))
		}
		return
	}
	_, err = client.SubmitCredential(rpcCtx, &signerv1.SubmitCredentialRequest{CorrelationId: in.GetCorrelationId(), Credential: answer.Secret})
	credential.Zero(answer.Secret)
	if err != nil {
		logger.Warn("submit credential failed", slog.Any("error", err))
	}
}
