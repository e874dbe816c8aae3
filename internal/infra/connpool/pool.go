// Package connpool 管理 signer 到已注册 UI 回调端点的 gRPC 长连接。
package connpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var (
	// ErrTargetNotFound 表示目标未注册。
	ErrTargetNotFound = errors.New("callback target not registered")
	// ErrTargetUnavailable 表示目标已降级或被摘除。
	ErrTargetUnavailable = errors.New("callback target unavailable")
	// ErrAcquireTimeout 表示在指定时间内未获取到连接。
	ErrAcquireTimeout = errors.New("acquire callback connection timeout")
)

// Dialer 允许自定义拨号逻辑，测试中替换为 bufconn。
type Dialer func(ctx context.Context, target Target, cfg Config) (*grpc.ClientConn, error)

// Target 描述一个回调端点，ID 通常为注册 ID。
type Target struct {
	ID       string
	Endpoint string
}

// Pool 按目标维护连接集合。
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config

	dialer  Dialer
	metrics *Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	targets map[string]*targetPool
}

// Option 允许自定义 Pool 行为。
type Option func(*Pool)

// WithDialer 自定义拨号器。
func WithDialer(d Dialer) Option {
	return func(p *Pool) { p.dialer = d }
}

// WithLogger 注入 slog Logger。
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithRegisterer 指定 Prometheus 注册器。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Pool) { p.metrics = NewMetrics(reg) }
}

// NewPool 创建连接池。
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	if cfg.MinConns < 0 || cfg.MaxConns <= 0 || cfg.MaxConns < cfg.MinConns {
		return nil, fmt.Errorf("invalid pool size: min=%d max=%d", cfg.MinConns, cfg.MaxConns)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		dialer:  defaultDialer,
		targets: make(map[string]*targetPool),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dialer == nil {
		p.dialer = defaultDialer
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	return p, nil
}

// Close 停止后台任务并关闭全部连接。
func (p *Pool) Close() error {
	p.cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tp := range p.targets {
		tp.close()
	}
	p.targets = map[string]*targetPool{}
	return nil
}

// RegisterTarget 新增目标；同 ID 且端点不变时为空操作，端点变化则重建。
func (p *Pool) RegisterTarget(target Target) {
	if target.ID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.targets[target.ID]; ok {
		if existing.target.Endpoint == target.Endpoint {
			return
		}
		existing.close()
	}
	tp := newTargetPool(p, target)
	p.targets[target.ID] = tp
	go tp.ensureMin(p.cfg.MinConns)
}

// RemoveTarget 移除目标并关闭其连接。
func (p *Pool) RemoveTarget(id string) {
	p.mu.Lock()
	tp, ok := p.targets[id]
	delete(p.targets, id)
	p.mu.Unlock()
	if ok {
		tp.close()
		p.metrics.forget(id)
	}
}

// Drain 摘除目标，后续借用立即失败。
func (p *Pool) Drain(id string) error {
	p.mu.RLock()
	tp := p.targets[id]
	p.mu.RUnlock()
	if tp == nil {
		return ErrTargetNotFound
	}
	tp.breaker.drain()
	tp.close()
	return nil
}

// Health 返回目标健康分级。
func (p *Pool) Health(id string) (Health, error) {
	p.mu.RLock()
	tp := p.targets[id]
	p.mu.RUnlock()
	if tp == nil {
		return "", ErrTargetNotFound
	}
	return tp.breaker.state(), nil
}

// Acquire 借用一条连接。
func (p *Pool) Acquire(ctx context.Context, id string) (*Lease, error) {
	p.mu.RLock()
	tp := p.targets[id]
	p.mu.RUnlock()
	if tp == nil {
		return nil, ErrTargetNotFound
	}
	return tp.acquire(ctx)
}

// Lease 表示从池中借出的连接句柄。
type Lease struct {
	conn     *pooledConn
	released atomic.Bool
}

// UIClient 返回 UIService 客户端。
func (l *Lease) UIClient() signerv1.UIServiceClient {
	return signerv1.NewUIServiceClient(l.conn.conn)
}

// Release 归还连接；err 非空时连接被丢弃并计入熔断失败。
func (l *Lease) Release(err error) {
	if l == nil || l.conn == nil || l.released.Swap(true) {
		return
	}
	l.conn.owner.release(l.conn, err)
}

// pooledConn 包装单条连接及其监控协程。
type pooledConn struct {
	conn      *grpc.ClientConn
	owner     *targetPool
	cancel    context.CancelFunc
	unhealthy atomic.Bool
}

func (pc *pooledConn) close() {
	if pc.cancel != nil {
		pc.cancel()
	}
	_ = pc.conn.Close()
}

func (pc *pooledConn) start() {
	ctx, cancel := context.WithCancel(pc.owner.ctx)
	pc.cancel = cancel
	go pc.watchConnectivity(ctx)
	go pc.healthProbe(ctx)
}

func (pc *pooledConn) watchConnectivity(ctx context.Context) {
	tp := pc.owner
	backoff := transport.NewBackoff(tp.parent.cfg.Backoff)
	for {
		state := pc.conn.GetState()
		if state == connectivity.Shutdown {
			return
		}
		if !pc.conn.WaitForStateChange(ctx, state) {
			return
		}
		switch pc.conn.GetState() {
		case connectivity.TransientFailure:
			tp.parent.metrics.incTransientFailure(tp.target.ID)
			tp.breaker.failure()
			select {
			case <-time.After(backoff.Next()):
				pc.conn.ResetConnectBackoff()
			case <-ctx.Done():
				return
			}
		case connectivity.Ready:
			backoff.Reset()
			tp.breaker.success()
		}
	}
}

func (pc *pooledConn) healthProbe(ctx context.Context) {
	cfg := pc.owner.parent.cfg
	interval := cfg.HealthCheckInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	client := healthpb.NewHealthClient(pc.conn)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
			resp, err := client.Check(probeCtx, &healthpb.HealthCheckRequest{Service: cfg.ServiceName})
			cancel()
			if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				pc.unhealthy.Store(true)
				pc.owner.breaker.failure()
				pc.owner.parent.logger.Warn("ui callback health degraded", slog.String("target", pc.owner.target.ID), slog.Any("error", err))
				return
			}
			pc.owner.breaker.success()
		}
	}
}

// targetPool 管理单个目标的连接集合。
type targetPool struct {
	parent *Pool
	target Target
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	conns   chan *pooledConn
	total   int
	closed  bool
	breaker *breaker
}

func newTargetPool(parent *Pool, target Target) *targetPool {
	ctx, cancel := context.WithCancel(parent.ctx)
	return &targetPool{
		parent:  parent,
		target:  target,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(chan *pooledConn, parent.cfg.MaxConns),
		breaker: newBreaker(3, time.Second),
	}
}

func (tp *targetPool) ensureMin(min int) {
	for {
		tp.mu.Lock()
		total, closed := tp.total, tp.closed
		tp.mu.Unlock()
		if closed || total >= min {
			return
		}
		if err := tp.maybeOpen(); err != nil {
			tp.parent.logger.Warn("prewarm callback connection failed", slog.String("target", tp.target.ID), slog.Any("error", err))
			select {
			case <-time.After(200 * time.Millisecond):
			case <-tp.ctx.Done():
				return
			}
		}
	}
}

func (tp *targetPool) acquire(ctx context.Context) (*Lease, error) {
	if !tp.breaker.allow() {
		return nil, ErrTargetUnavailable
	}
	start := time.Now()
	acquireCtx := ctx
	if timeout := tp.parent.cfg.AcquireTimeout; timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	for {
		select {
		case pc := <-tp.conns:
			if lease := tp.lease(pc, start); lease != nil {
				return lease, nil
			}
			continue
		default:
		}
		if err := tp.maybeOpen(); err != nil {
			tp.parent.logger.Warn("open callback connection failed", slog.String("target", tp.target.ID), slog.Any("error", err))
		}
		select {
		case pc := <-tp.conns:
			if lease := tp.lease(pc, start); lease != nil {
				return lease, nil
			}
		case <-acquireCtx.Done():
			return nil, errors.Join(ErrAcquireTimeout, acquireCtx.Err())
		}
	}
}

// lease 过滤掉失效连接，失效时返回 nil 并异步补充。
func (tp *targetPool) lease(pc *pooledConn, start time.Time) *Lease {
	if pc == nil {
		return nil
	}
	if pc.unhealthy.Load() {
		tp.discard(pc)
		return nil
	}
	tp.parent.metrics.observeAcquire(tp.target.ID, time.Since(start))
	return &Lease{conn: pc}
}

func (tp *targetPool) maybeOpen() error {
	tp.mu.Lock()
	if tp.closed || tp.total >= tp.parent.cfg.MaxConns {
		tp.mu.Unlock()
		return nil
	}
	tp.total++
	tp.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(tp.ctx, tp.parent.cfg.DialTimeout)
	defer cancel()
	conn, err := tp.parent.dialer(dialCtx, tp.target, tp.parent.cfg)
	if err != nil {
		tp.decrement()
		return err
	}
	pc := &pooledConn{conn: conn, owner: tp}
	pc.start()
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.closed {
		pc.close()
		tp.total--
		return ErrTargetUnavailable
	}
	tp.conns <- pc
	tp.parent.metrics.setActive(tp.target.ID, float64(tp.total))
	return nil
}

func (tp *targetPool) release(pc *pooledConn, err error) {
	if err != nil {
		pc.unhealthy.Store(true)
		tp.breaker.failure()
	}
	if pc.unhealthy.Load() {
		tp.discard(pc)
		return
	}
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.closed {
		pc.close()
		return
	}
	select {
	case tp.conns <- pc:
	default:
		pc.close()
		tp.total--
	}
}

func (tp *targetPool) discard(pc *pooledConn) {
	pc.close()
	tp.decrement()
}

func (tp *targetPool) decrement() {
	tp.mu.Lock()
	if tp.total > 0 {
		tp.total--
	}
	total := tp.total
	tp.mu.Unlock()
	tp.parent.metrics.setActive(tp.target.ID, float64(total))
}

func (tp *targetPool) close() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.closed {
		return
	}
	tp.closed = true
	tp.cancel()
	for {
		select {
		case pc := <-tp.conns:
			pc.close()
		default:
			tp.total = 0
			return
		}
	}
}

// defaultDialer 通过 transport 建立惰性连接，端点可以是 unix/vsock/tcp。
func defaultDialer(ctx context.Context, target Target, cfg Config) (*grpc.ClientConn, error) {
	return transport.DialGRPC(ctx, target.Endpoint, transport.ClientOptions{
		KeepaliveTime:    cfg.KeepaliveTime,
		KeepaliveTimeout: cfg.KeepaliveTimeout,
		ServiceName:      cfg.ServiceName,
		MethodTimeout:    cfg.AcquireTimeout,
	})
}
