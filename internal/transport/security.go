package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
)

// TLSFiles 描述证书文件路径。
type TLSFiles struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`
	// ServerName 仅用于客户端校验。
	ServerName string `yaml:"server_name"`
}

// Enabled 表示是否配置了证书。
func (f TLSFiles) Enabled() bool {
	return f.CertFile != "" || f.CAFile != ""
}

// ServerTLS 加载服务端证书。
func (f TLSFiles) ServerTLS() (*tls.Config, error) {
	if f.CertFile == "" || f.KeyFile == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(f.CertFile, f.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load server certificate: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}, nil
}

// ClientTLS 加载客户端信任的 CA。
func (f TLSFiles) ClientTLS() (*tls.Config, error) {
	if f.CAFile == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(f.CAFile)
	if err != nil {
		return nil, fmt.Errorf("read ca file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", f.CAFile)
	}
	cfg := &tls.Config{RootCAs: pool, ServerName: f.ServerName, MinVersion: tls.VersionTLS12}
	if f.CertFile != "" && f.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(f.CertFile, f.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// IsSecureChannel 判断当前 RPC 是否经由加密或本地通道到达：
// TLS 认证的连接、unix socket 或 vsock。
func IsSecureChannel(ctx context.Context) bool {
	p, ok := peer.FromContext(ctx)
	if !ok || p == nil {
		return false
	}
	if _, ok := p.AuthInfo.(credentials.TLSInfo); ok {
		return true
	}
	if p.Addr == nil {
		return false
	}
	switch p.Addr.Network() {
	case NetworkUnix, NetworkVsock:
		return true
	}
	return false
}
