package connpool

import (
	"os"
	"strconv"
	"time"

	"github.com/aegis-sign/jadesigner/internal/transport"
)

// Config 控制连接池的全局行为。
type Config struct {
	MinConns            int
	MaxConns            int
	AcquireTimeout      time.Duration
	DialTimeout         time.Duration
	KeepaliveTime       time.Duration
	KeepaliveTimeout    time.Duration
	HealthCheckInterval time.Duration
	ServiceName         string
	Backoff             transport.BackoffConfig
}

// DefaultConfig 返回 signer→UI 回调连接的默认值：回调频率低，连接数很小。
func DefaultConfig() Config {
	return Config{
		MinConns:            1,
		MaxConns:            4,
		AcquireTimeout:      2 * time.Second,
		DialTimeout:         2 * time.Second,
		KeepaliveTime:       30 * time.Second,
		KeepaliveTimeout:    10 * time.Second,
		HealthCheckInterval: 5 * time.Second,
		ServiceName:         "signer.v1.UIService",
		Backoff: transport.BackoffConfig{
			Initial: 50 * time.Millisecond,
			Max:     2 * time.Second,
			Jitter:  0.2,
		},
	}
}

// LoadConfigFromEnv 在默认值基础上应用 JADE_UI_POOL_* 环境变量。
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := readInt("JADE_UI_POOL_MIN"); v > 0 {
		cfg.MinConns = v
	}
	if v := readInt("JADE_UI_POOL_MAX"); v > 0 {
		cfg.MaxConns = v
	}
	if d := readDuration("JADE_UI_POOL_ACQUIRE_TIMEOUT"); d > 0 {
		cfg.AcquireTimeout = d
	}
	if d := readDuration("JADE_UI_POOL_DIAL_TIMEOUT"); d > 0 {
		cfg.DialTimeout = d
	}
	if d := readDuration("JADE_UI_POOL_HEALTH_INTERVAL"); d > 0 {
		cfg.HealthCheckInterval = d
	}
	if d := readDuration("JADE_UI_POOL_RETRY_INITIAL"); d > 0 {
		cfg.Backoff.Initial = d
	}
	if d := readDuration("JADE_UI_POOL_RETRY_MAX"); d > 0 {
		cfg.Backoff.Max = d
	}
	if j := readFloat("JADE_UI_POOL_RETRY_JITTER"); j >= 0 {
		cfg.Backoff.Jitter = j
	}
	if cfg.MaxConns < cfg.MinConns {
		cfg.MaxConns = cfg.MinConns
	}
	return cfg
}

func readInt(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return v
}

func readDuration(key string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func readFloat(key string) float64 {
	value := os.Getenv(key)
	if value == "" {
		return -1
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return -1
	}
	return v
}
