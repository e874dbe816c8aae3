package connpool

import (
	"sync"
	"time"
)

// Health 表示回调目标的健康分级。
type Health string

const (
	HealthOK       Health = "ok"
	HealthDegraded Health = "degraded"
	HealthDrained  Health = "drained"
)

// breaker 按连续失败次数降级回调目标；降级后在 cooldown 内拒绝借用，
// 冷却结束放行一次试探。drained 状态不可恢复，只能重新注册目标。
type breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	health   Health
	failures int
	since    time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		health:    HealthOK,
		since:     time.Now(),
	}
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.health {
	case HealthDrained:
		return false
	case HealthDegraded:
		if b.now().Sub(b.since) < b.cooldown {
			return false
		}
		b.set(HealthOK)
		b.failures = 0
	}
	return true
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	if b.health == HealthDegraded {
		b.set(HealthOK)
	}
}

// failure 记录一次失败，返回是否因此降级。
func (b *breaker) failure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.health == HealthOK && b.failures >= b.threshold {
		b.set(HealthDegraded)
		return true
	}
	return false
}

func (b *breaker) drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set(HealthDrained)
}

func (b *breaker) state() Health {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.health
}

func (b *breaker) set(h Health) {
	if b.health != h {
		b.health = h
		b.since = b.now()
	}
}
