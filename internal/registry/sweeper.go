package registry

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// SweeperConfig 定义过期扫描参数。
type SweeperConfig struct {
	Registry      *Registry
	Interval      time.Duration
	JitterPercent float64
	Logger        *slog.Logger
}

// Sweeper 周期性检查注册是否超出不活跃窗口，带抖动避免与续约节奏对齐。
type Sweeper struct {
	cfg    SweeperConfig
	rand   *rand.Rand
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper 创建扫描器，默认间隔为 TTL 的一半。
func NewSweeper(cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 && cfg.Registry != nil {
		cfg.Interval = cfg.Registry.TTL() / 2
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.JitterPercent <= 0 {
		cfg.JitterPercent = 0.1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Sweeper{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start 启动后台扫描，直到 ctx 结束或调用 Stop。
func (s *Sweeper) Start(ctx context.Context) {
	if ctx == nil || s == nil {
		return
	}
	s.Stop()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.nextInterval())
		defer timer.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-timer.C:
				s.RunOnce(runCtx)
				timer.Reset(s.nextInterval())
			}
		}
	}()
}

// Stop 停止后台扫描。
func (s *Sweeper) Stop() {
	if s == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.cancel = nil
}

// RunOnce 执行一次扫描。
func (s *Sweeper) RunOnce(ctx context.Context) {
	if s == nil || s.cfg.Registry == nil {
		return
	}
	if _, err := s.cfg.Registry.Sweep(ctx); err != nil {
		s.cfg.Logger.Warn("registration sweep failed", slog.Any("error", err))
	}
}

func (s *Sweeper) nextInterval() time.Duration {
	base := float64(s.cfg.Interval)
	delta := (s.rand.Float64()*2 - 1) * base * s.cfg.JitterPercent
	return time.Duration(base + delta)
}
