// Package ui 实现 UI 前端：发现 signer、注册回调、向用户展示请求并回传凭证或取消。
package ui

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/discovery"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultPromptTimeout 是等待用户回应的上限，超时视为取消。
const DefaultPromptTimeout = 60 * time.Second

// DefaultRenewInterval 是注册续期间隔。
const DefaultRenewInterval = 10 * time.Second

// Discoverer 定位 signer，*discovery.Client 满足该接口。
type Discoverer interface {
	Discover(ctx context.Context, desired string) (discovery.ServiceEndpoint, error)
}

// Config 控制 Agent 行为。
type Config struct {
	// CallbackEndpoint 是 UI 回调服务监听的端点；tcp 端口为 0 时注册实际端口。
	CallbackEndpoint string
	// AdvertiseEndpoint 非空时代替监听地址注册给 signer，用于 signer 位于其他主机的部署。
	AdvertiseEndpoint string
	Version           string
	PromptTimeout     time.Duration
	RenewInterval     time.Duration
	Backoff           transport.BackoffConfig
	ServerTLS         *tls.Config
	// Client 是连接 signer 时的 gRPC 参数。
	Client transport.ClientOptions
	Logger *slog.Logger
}

func (c Config) normalize() Config {
	if c.Version == "" {
		c.Version = discovery.ProtocolVersion
	}
	if c.PromptTimeout <= 0 {
		c.PromptTimeout = DefaultPromptTimeout
	}
	if c.RenewInterval <= 0 {
		c.RenewInterval = DefaultRenewInterval
	}
	if c.Backoff.Initial <= 0 {
		c.Backoff = transport.DefaultBackoff()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Agent 维持与 signer 的注册，并处理 signer 发来的签名提示。
type Agent struct {
	cfg        Config
	discoverer Discoverer
	prompter   Prompter
	logger     *slog.Logger
	backoff    *transport.Backoff

	mu             sync.RWMutex
	client         signerv1.SignerServiceClient
	registrationID string
	advertised     string
	ready          chan struct{}
	readyOnce      sync.Once

	// lifetime 在 Run 退出时取消，未完成的提示随之结束。
	lifetime context.Context
	// closed 置位后不再接收新提示；与 prompts.Add 同在 mu 下。
	closed  bool
	prompts sync.WaitGroup
}

// NewAgent 创建 Agent。
func NewAgent(discoverer Discoverer, prompter Prompter, cfg Config) (*Agent, error) {
	if discoverer == nil {
		return nil, errors.New("discoverer is required")
	}
	if prompter == nil {
		return nil, errors.New("prompter is required")
	}
	if cfg.CallbackEndpoint == "" {
		return nil, errors.New("callback endpoint is required")
	}
	cfg = cfg.normalize()
	return &Agent{
		cfg:        cfg,
		discoverer: discoverer,
		prompter:   prompter,
		logger:     cfg.Logger,
		backoff:    transport.NewBackoff(cfg.Backoff),
		ready:      make(chan struct{}),
		lifetime:   context.Background(),
	}, nil
}

// Ready 在首次注册成功后关闭。
func (a *Agent) Ready() <-chan struct{} { return a.ready }

// RegistrationID 返回当前注册 ID，未注册时为空。
func (a *Agent) RegistrationID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registrationID
}

// Run 启动回调服务并保持注册，直到 ctx 结束。
func (a *Agent) Run(ctx context.Context) error {
	lis, err := transport.ListenString(a.cfg.CallbackEndpoint)
	if err != nil {
		return fmt.Errorf("listen callback endpoint: %w", err)
	}
	advertised, err := advertisedEndpoint(a.cfg.CallbackEndpoint, a.cfg.AdvertiseEndpoint, lis)
	if err != nil {
		_ = lis.Close()
		return err
	}
	lifetime, cancelPrompts := context.WithCancel(context.Background())
	a.mu.Lock()
	a.advertised = advertised
	a.lifetime = lifetime
	a.closed = false
	a.mu.Unlock()

	srv := grpc.NewServer(transport.ServerOptions(a.cfg.ServerTLS)...)
	signerv1.RegisterUIServiceServer(srv, &callbackServer{agent: a})
	hs := health.NewServer()
	hs.SetServingStatus(signerv1.UIService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(lis) }()
	a.logger.Info("ui callback listening", slog.String("endpoint", advertised))

	defer func() {
		hs.Shutdown()
		srv.Stop()
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		cancelPrompts()
		a.prompts.Wait()
	}()

	for {
		registered, err := a.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if registered {
			a.backoff.Reset()
		}
		delay := a.backoff.Next()
		a.logger.Warn("signer session ended, re-discovering", slog.Any("error", err), slog.Duration("retry_in", delay))
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return fmt.Errorf("callback server stopped: %w", err)
		case <-time.After(delay):
		}
	}
}

// session 完成一次 发现 → 连接 → 注册 → 续期 循环，返回是否注册成功过。
func (a *Agent) session(ctx context.Context) (bool, error) {
	ep, err := a.discoverer.Discover(ctx, a.cfg.Version)
	if err != nil {
		return false, err
	}
	conn, err := transport.DialGRPC(ctx, ep.Address, a.cfg.Client)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	client := signerv1.NewSignerServiceClient(conn)

	a.mu.RLock()
	advertised := a.advertised
	a.mu.RUnlock()
	reg, err := client.Register(ctx, &signerv1.RegisterRequest{
		CallbackEndpoint: advertised,
		Capabilities:     []string{signerv1.CapabilityCredentialPrompt},
	})
	if err != nil {
		return false, err
	}
	a.setSession(client, reg.GetRegistrationId())
	defer a.setSession(nil, "")
	a.readyOnce.Do(func() { close(a.ready) })
	a.logger.Info("registered with signer",
		slog.String("signer", ep.Address),
		slog.String("version", ep.Version.String()),
		slog.String("registration_id", reg.GetRegistrationId()))

	ticker := time.NewTicker(a.renewInterval(reg))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.deregister(client, reg.GetRegistrationId())
			return true, nil
		case <-ticker.C:
			if _, err := client.Renew(ctx, &signerv1.RenewRequest{RegistrationId: reg.GetRegistrationId()}); err != nil {
				return true, err
			}
		}
	}
}

func (a *Agent) renewInterval(reg *signerv1.Registration) time.Duration {
	interval := a.cfg.RenewInterval
	if ttl := time.Duration(reg.GetTtlMs()) * time.Millisecond; ttl > 0 && interval > ttl/3 {
		interval = ttl / 3
	}
	return interval
}

func (a *Agent) deregister(client signerv1.SignerServiceClient, id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Deregister(ctx, &signerv1.DeregisterRequest{RegistrationId: id}); err != nil {
		a.logger.Warn("deregister failed", slog.String("registration_id", id), slog.Any("error", err))
		return
	}
	a.logger.Info("deregistered from signer", slog.String("registration_id", id))
}

func (a *Agent) setSession(client signerv1.SignerServiceClient, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.client = client
	a.registrationID = id
}

// trackPrompt 登记一个进行中的提示；Run 已退出时返回 false。
func (a *Agent) trackPrompt() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.prompts.Add(1)
	return true
}

func (a *Agent) currentClient() signerv1.SignerServiceClient {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client
}

// advertisedEndpoint 返回注册给 signer 的回调地址；tcp 通配监听必须显式给出对外地址。
func advertisedEndpoint(raw, advertise string, lis net.Listener) (string, error) {
	if advertise != "" {
		ep, err := transport.ParseEndpoint(advertise)
		if err != nil {
			return "", fmt.Errorf("callback advertise endpoint: %w", err)
		}
		if ep.Network == transport.NetworkTCP && !ep.Remote() {
			return "", fmt.Errorf("callback advertise endpoint %q is a wildcard address", advertise)
		}
		return ep.String(), nil
	}
	ep, err := transport.ParseEndpoint(raw)
	if err != nil {
		return "", err
	}
	if ep.Network == transport.NetworkTCP {
		ep.Address = lis.Addr().String()
		if !ep.Remote() {
			return "", fmt.Errorf("callback endpoint %s listens on a wildcard address; set an advertise endpoint", ep.Address)
		}
	}
	return ep.String(), nil
}
