package transport

import (
	"math/rand"
	"sync"
	"time"
)

// BackoffConfig 决定断线重连指数退避参数。
type BackoffConfig struct {
	Initial time.Duration `yaml:"initial"`
	Max     time.Duration `yaml:"max"`
	Jitter  float64       `yaml:"jitter"`
}

// DefaultBackoff 返回 UI 重新注册使用的默认退避参数。
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{Initial: 200 * time.Millisecond, Max: 10 * time.Second, Jitter: 0.2}
}

// Backoff 在连接中断时计算指数退避等待时间，包含抖动以避免惊群。
type Backoff struct {
	cfg      BackoffConfig
	mu       sync.Mutex
	attempts int
	rand     *rand.Rand
}

// NewBackoff 创建 Backoff。
func NewBackoff(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = DefaultBackoff().Initial
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	return &Backoff{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next 计算下一次等待时长。
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	base := b.cfg.Initial << b.attempts
	if base <= 0 || base > b.cfg.Max {
		base = b.cfg.Max
	}
	if b.cfg.Jitter > 0 {
		low := 1 - b.cfg.Jitter
		high := 1 + b.cfg.Jitter
		base = time.Duration(float64(base) * (low + b.rand.Float64()*(high-low)))
	}
	if b.attempts < 16 {
		b.attempts++
	}
	if base < b.cfg.Initial {
		base = b.cfg.Initial
	}
	if base > b.cfg.Max {
		base = b.cfg.Max
	}
	return base
}

// Reset 清除历史失败，下一次退避重新从 Initial 开始。
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}
