// Package config 加载 signer 与 UI 前端的运行配置：默认值 → YAML 文件 → JADE_* 环境变量。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aegis-sign/jadesigner/internal/transport"
	"gopkg.in/yaml.v3"
)

// Registry 存储后端取值。
const (
	RegistryBackendMemory = "memory"
	RegistryBackendRedis  = "redis"
)

// Config 是完整配置。
type Config struct {
	Signer    SignerConfig    `yaml:"signer"`
	UI        UIConfig        `yaml:"ui"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Registry  RegistryConfig  `yaml:"registry"`
	Keystore  KeystoreConfig  `yaml:"keystore"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Chain     ChainConfig     `yaml:"chain"`
	Log       LogConfig       `yaml:"log"`
}

// SignerConfig 控制 signer 进程。
type SignerConfig struct {
	GRPCListen string `yaml:"grpc_listen"`
	// AdvertiseEndpoint 是经网络发现告知其他主机的 gRPC 地址，为空时沿用 GRPCListen。
	AdvertiseEndpoint string             `yaml:"advertise_endpoint"`
	HTTPListen        string             `yaml:"http_listen"`
	TLS               transport.TLSFiles `yaml:"tls"`
	RequestTimeout    time.Duration      `yaml:"request_timeout"`
	MaxQueue          int                `yaml:"max_queue"`
	AdmissionRate     float64            `yaml:"admission_rate"`
	AdmissionBurst    int                `yaml:"admission_burst"`
	// AllowInsecureCredentials 允许凭证经明文 TCP 传输，仅用于测试环境。
	AllowInsecureCredentials bool `yaml:"allow_insecure_credentials"`
}

// UIConfig 控制 UI 前端进程。
type UIConfig struct {
	CallbackListen string `yaml:"callback_listen"`
	// CallbackAdvertise 是注册给 signer 的回调地址，为空时由监听地址推导。
	CallbackAdvertise string                  `yaml:"callback_advertise"`
	TLS               transport.TLSFiles      `yaml:"tls"`
	PromptTimeout     time.Duration           `yaml:"prompt_timeout"`
	RenewInterval     time.Duration           `yaml:"renew_interval"`
	Backoff           transport.BackoffConfig `yaml:"backoff"`
}

// DiscoveryConfig 控制服务发现。
type DiscoveryConfig struct {
	// LocalEndpoint 是本机流式发现端点（unix 或 vsock）。
	LocalEndpoint string `yaml:"local_endpoint"`
	// UDPListen 为空时 signer 不响应网络发现。
	UDPListen string `yaml:"udp_listen"`
	// Peers 是客户端网络发现时询问的 UDP 地址。
	Peers   []string      `yaml:"peers"`
	Timeout time.Duration `yaml:"timeout"`
}

// RegistryConfig 控制 UI 注册存储。
type RegistryConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisKey      string        `yaml:"redis_key"`
}

// KeystoreConfig 指定密钥文件目录。
type KeystoreConfig struct {
	Dir string `yaml:"dir"`
	// Light 使用较低的 scrypt 参数，仅用于开发。
	Light bool `yaml:"light"`
}

// LedgerConfig 指定终态记录数据库，Path 为空表示不落盘。
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// ChainConfig 指定广播交易用的节点。
type ChainConfig struct {
	RPCURL string `yaml:"rpc_url"`
}

// LogConfig 控制日志输出。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig 返回本机部署的默认值。
func DefaultConfig() Config {
	return Config{
		Signer: SignerConfig{
			GRPCListen:     "unix:///tmp/jadesigner.sock",
			HTTPListen:     "127.0.0.1:8550",
			RequestTimeout: 2 * time.Minute,
			MaxQueue:       64,
			AdmissionRate:  5,
			AdmissionBurst: 10,
		},
		UI: UIConfig{
			CallbackListen: "unix:///tmp/jadesigner-ui.sock",
			PromptTimeout:  60 * time.Second,
			RenewInterval:  10 * time.Second,
			Backoff:        transport.DefaultBackoff(),
		},
		Discovery: DiscoveryConfig{
			LocalEndpoint: "unix:///tmp/jadesigner-discovery.sock",
			Timeout:       2 * time.Second,
		},
		Registry: RegistryConfig{
			Backend:       RegistryBackendMemory,
			TTL:           30 * time.Second,
			SweepInterval: 5 * time.Second,
			RedisKey:      "jadesigner:ui-registration",
		},
		Keystore: KeystoreConfig{Dir: "./keystore"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load 读取 YAML 文件（path 为空则只用默认值），再应用环境变量并校验。
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv 用 JADE_* 环境变量覆盖配置。
func (c *Config) ApplyEnv() {
	readString("JADE_SIGNER_GRPC_LISTEN", &c.Signer.GRPCListen)
	readString("JADE_SIGNER_HTTP_LISTEN", &c.Signer.HTTPListen)
	readString("JADE_SIGNER_ADVERTISE", &c.Signer.AdvertiseEndpoint)
	if d := readDuration("JADE_REQUEST_TIMEOUT"); d > 0 {
		c.Signer.RequestTimeout = d
	}
	if v := readInt("JADE_MAX_QUEUE"); v > 0 {
		c.Signer.MaxQueue = v
	}
	if v, ok := readBool("JADE_ALLOW_INSECURE_CREDENTIALS"); ok {
		c.Signer.AllowInsecureCredentials = v
	}
	readString("JADE_UI_CALLBACK_LISTEN", &c.UI.CallbackListen)
	readString("JADE_UI_CALLBACK_ADVERTISE", &c.UI.CallbackAdvertise)
	if d := readDuration("JADE_UI_PROMPT_TIMEOUT"); d > 0 {
		c.UI.PromptTimeout = d
	}
	readString("JADE_DISCOVERY_LOCAL", &c.Discovery.LocalEndpoint)
	readString("JADE_DISCOVERY_UDP_LISTEN", &c.Discovery.UDPListen)
	if v := os.Getenv("JADE_DISCOVERY_PEERS"); v != "" {
		c.Discovery.Peers = splitList(v)
	}
	readString("JADE_REGISTRY_BACKEND", &c.Registry.Backend)
	if d := readDuration("JADE_REGISTRY_TTL"); d > 0 {
		c.Registry.TTL = d
	}
	readString("JADE_REDIS_ADDR", &c.Registry.RedisAddr)
	readString("JADE_REDIS_PASSWORD", &c.Registry.RedisPassword)
	readString("JADE_KEYSTORE_DIR", &c.Keystore.Dir)
	readString("JADE_LEDGER_PATH", &c.Ledger.Path)
	readString("JADE_CHAIN_RPC", &c.Chain.RPCURL)
	readString("JADE_LOG_LEVEL", &c.Log.Level)
	readString("JADE_LOG_FORMAT", &c.Log.Format)
}

// Validate 检查配置一致性。
func (c Config) Validate() error {
	var errs []error
	for name, value := range map[string]string{
		"signer.grpc_listen":       c.Signer.GRPCListen,
		"ui.callback_listen":       c.UI.CallbackListen,
		"discovery.local_endpoint": c.Discovery.LocalEndpoint,
	} {
		if value == "" {
			continue
		}
		if _, err := transport.ParseEndpoint(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Discovery.UDPListen != "" && !remote(c.Signer.NetworkEndpoint()) {
		errs = append(errs, errors.New("discovery.udp_listen needs signer.advertise_endpoint (or signer.grpc_listen) to be a tcp address other hosts can dial"))
	}
	if c.Signer.AdvertiseEndpoint != "" && !remote(c.Signer.AdvertiseEndpoint) {
		errs = append(errs, fmt.Errorf("signer.advertise_endpoint %q is not a dialable tcp address", c.Signer.AdvertiseEndpoint))
	}
	if err := c.UI.validateCallback(); err != nil {
		errs = append(errs, err)
	}
	if c.Signer.RequestTimeout <= 0 {
		errs = append(errs, errors.New("signer.request_timeout must be positive"))
	}
	if c.UI.PromptTimeout <= 0 {
		errs = append(errs, errors.New("ui.prompt_timeout must be positive"))
	}
	if c.UI.RenewInterval <= 0 || c.UI.RenewInterval >= c.Registry.TTL {
		errs = append(errs, errors.New("ui.renew_interval must be positive and shorter than registry.ttl"))
	}
	switch c.Registry.Backend {
	case RegistryBackendMemory:
	case RegistryBackendRedis:
		if c.Registry.RedisAddr == "" {
			errs = append(errs, errors.New("registry.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("registry.backend %q is not supported", c.Registry.Backend))
	}
	if c.Keystore.Dir == "" {
		errs = append(errs, errors.New("keystore.dir is required"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// NetworkEndpoint 返回网络发现应答的 gRPC 地址。
func (s SignerConfig) NetworkEndpoint() string {
	if s.AdvertiseEndpoint != "" {
		return s.AdvertiseEndpoint
	}
	return s.GRPCListen
}

// validateCallback 拒绝 signer 无法拨回的回调地址（tcp 通配地址）。
func (u UIConfig) validateCallback() error {
	if u.CallbackAdvertise != "" {
		ep, err := transport.ParseEndpoint(u.CallbackAdvertise)
		if err != nil {
			return fmt.Errorf("ui.callback_advertise: %w", err)
		}
		if ep.Network == transport.NetworkTCP && !ep.Remote() {
			return fmt.Errorf("ui.callback_advertise %q is a wildcard address", u.CallbackAdvertise)
		}
		return nil
	}
	ep, err := transport.ParseEndpoint(u.CallbackListen)
	if err != nil {
		return nil
	}
	if ep.Network == transport.NetworkTCP && !ep.Remote() {
		return fmt.Errorf("ui.callback_listen %q is a wildcard address; set ui.callback_advertise", u.CallbackListen)
	}
	return nil
}

func remote(raw string) bool {
	ep, err := transport.ParseEndpoint(raw)
	return err == nil && ep.Remote()
}

// SlogLevel 解析日志级别。
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger 按配置构造 logger。
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func readString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
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

func readBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return v, true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
