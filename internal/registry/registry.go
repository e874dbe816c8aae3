package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/google/uuid"
)

// DefaultTTL 是注册的默认不活跃窗口。
const DefaultTTL = 30 * time.Second

// ErrRegistrationNotFound 表示注册不存在、已过期或已被取代，UI 应重新注册。
var ErrRegistrationNotFound = apierrors.New(apierrors.CodeNotFound, "registration not found")

// Config 定义 Registry 参数。
type Config struct {
	TTL         time.Duration
	Clock       Clock
	Logger      *slog.Logger
	Metrics     *Metrics
	IDGenerator func() string
	// OnRetire 在注册被取代、撤销或过期时以旧注册 ID 调用。调用时持有 Registry 锁，
	// 不得回调 Registry。
	OnRetire func(id string)
}

func (c Config) normalize() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.Clock == nil {
		c.Clock = NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.IDGenerator == nil {
		c.IDGenerator = uuid.NewString
	}
	return c
}

// Registry 保证任一时刻至多一条有效注册，所有读写串行化。
type Registry struct {
	store Store
	cfg   Config

	mu sync.Mutex
	// activeID 记录最近一次观察到的有效注册，用于识别过期事件。
	activeID string
}

// New 创建 Registry，store 为空时使用进程内存储。
func New(store Store, cfg Config) *Registry {
	cfg = cfg.normalize()
	if store == nil {
		store = NewMemoryStore(cfg.Clock)
	}
	return &Registry{store: store, cfg: cfg}
}

// TTL 返回不活跃窗口。
func (r *Registry) TTL() time.Duration { return r.cfg.TTL }

// Register 记录 UI 已就绪。同一回调地址重复注册只刷新时间并保留 ID；
// 不同地址会取代旧注册。
func (r *Registry) Register(ctx context.Context, callbackEndpoint string, capabilities []Capability) (Record, error) {
	ep, err := transport.ParseEndpoint(callbackEndpoint)
	if err != nil {
		return Record{}, apierrors.New(apierrors.CodeInvalidArgument, fmt.Sprintf("invalid callback endpoint: %v", err))
	}
	if !slices.Contains(capabilities, CapabilityCredentialPrompt) {
		return Record{}, apierrors.New(apierrors.CodeInvalidArgument, "ui must support credential_prompt")
	}
	endpoint := ep.String()

	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.load(ctx)
	if err != nil {
		return Record{}, err
	}
	now := r.cfg.Clock.Now()
	if current != nil && current.CallbackEndpoint == endpoint {
		current.Capabilities = slices.Clone(capabilities)
		current.RefreshedAt = now
		current.ExpiresAt = now.Add(r.cfg.TTL)
		if err := r.store.Save(ctx, *current); err != nil {
			return Record{}, err
		}
		r.cfg.Metrics.incRegistration("refresh")
		return *current, nil
	}

	rec := Record{
		ID:               r.cfg.IDGenerator(),
		CallbackEndpoint: endpoint,
		Capabilities:     slices.Clone(capabilities),
		RegisteredAt:     now,
		RefreshedAt:      now,
		ExpiresAt:        now.Add(r.cfg.TTL),
	}
	if err := r.store.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	if current != nil {
		r.cfg.Logger.Info("ui registration superseded",
			slog.String("previous", current.ID),
			slog.String("registration", rec.ID),
			slog.String("callback", endpoint))
		r.cfg.Metrics.incRegistration("supersede")
		r.retire(current.ID)
	} else {
		r.cfg.Logger.Info("ui registered", slog.String("registration", rec.ID), slog.String("callback", endpoint))
		r.cfg.Metrics.incRegistration("new")
	}
	r.activeID = rec.ID
	r.cfg.Metrics.setActive(true)
	return rec, nil
}

// Renew 刷新注册的活跃时间。
func (r *Registry) Renew(ctx context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.load(ctx)
	if err != nil {
		return Record{}, err
	}
	if current == nil || current.ID != id {
		return Record{}, ErrRegistrationNotFound
	}
	now := r.cfg.Clock.Now()
	current.RefreshedAt = now
	current.ExpiresAt = now.Add(r.cfg.TTL)
	if err := r.store.Save(ctx, *current); err != nil {
		return Record{}, err
	}
	return *current, nil
}

// Deregister 撤销注册，之后的签名请求会立即失败。
func (r *Registry) Deregister(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.load(ctx); err != nil {
		return err
	}
	removed, err := r.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrRegistrationNotFound
	}
	if r.activeID == id {
		r.activeID = ""
	}
	r.retire(id)
	r.cfg.Logger.Info("ui deregistered", slog.String("registration", id))
	r.cfg.Metrics.incRegistration("deregister")
	r.cfg.Metrics.setActive(false)
	return nil
}

// Current 返回当前有效注册，不存在或已过期时返回 nil。
func (r *Registry) Current(ctx context.Context) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Sweep 检查当前注册是否因不活跃而失效，返回是否发生了过期。
func (r *Registry) Sweep(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := r.activeID
	if _, err := r.load(ctx); err != nil {
		return false, err
	}
	return before != "" && r.activeID == "", nil
}

// load 需在持有 mu 时调用。
func (r *Registry) load(ctx context.Context) (*Record, error) {
	rec, err := r.store.Load(ctx)
	if err != nil {
		return nil, apierrors.New(apierrors.CodeServiceUnavailable, "registration store unavailable").WithRetryAfter(time.Second)
	}
	switch {
	case rec == nil && r.activeID != "":
		r.cfg.Logger.Info("ui registration expired", slog.String("registration", r.activeID))
		r.cfg.Metrics.incExpiration()
		r.cfg.Metrics.setActive(false)
		r.retire(r.activeID)
		r.activeID = ""
	case rec != nil && rec.ID != r.activeID:
		// 其他 signer 进程通过共享存储写入的注册。
		if r.activeID != "" {
			r.retire(r.activeID)
		}
		r.activeID = rec.ID
		r.cfg.Metrics.setActive(true)
	}
	return rec, nil
}

func (r *Registry) retire(id string) {
	if r.cfg.OnRetire != nil {
		r.cfg.OnRetire(id)
	}
}
