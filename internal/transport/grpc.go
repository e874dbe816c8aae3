package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// ClientOptions 控制 gRPC 客户端连接参数。
type ClientOptions struct {
	TLS              *tls.Config
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
	// ServiceName/MethodTimeout 用于生成默认 service config。
	ServiceName   string
	MethodTimeout time.Duration
	// Dialer 覆盖默认的端点拨号逻辑，测试中用于 bufconn。
	Dialer func(ctx context.Context, endpoint string) (net.Conn, error)
}

func (o ClientOptions) normalize() ClientOptions {
	if o.KeepaliveTime <= 0 {
		o.KeepaliveTime = 30 * time.Second
	}
	if o.KeepaliveTimeout <= 0 {
		o.KeepaliveTimeout = 10 * time.Second
	}
	if o.Dialer == nil {
		o.Dialer = DialString
	}
	return o
}

// DialOptions 构造连接到 signer/UI 端点所需的 grpc.DialOption。
func DialOptions(opts ClientOptions) []grpc.DialOption {
	opts = opts.normalize()
	creds := insecure.NewCredentials()
	if opts.TLS != nil {
		creds = credentials.NewTLS(opts.TLS)
	}
	dialer := opts.Dialer
	dopts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                opts.KeepaliveTime,
			Timeout:             opts.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			return dialer(ctx, addr)
		}),
	}
	if opts.ServiceName != "" && opts.MethodTimeout > 0 {
		serviceConfig := fmt.Sprintf(`{"methodConfig":[{"name":[{"service":"%s"}],"timeout":"%s"}]}`, opts.ServiceName, opts.MethodTimeout.String())
		dopts = append(dopts, grpc.WithDefaultServiceConfig(serviceConfig))
	}
	return dopts
}

// DialGRPC 建立到端点的惰性 gRPC 连接，端点字符串原样交给拨号器。
func DialGRPC(ctx context.Context, endpoint string, opts ClientOptions, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	if opts.Dialer == nil {
		if _, err := ParseEndpoint(endpoint); err != nil {
			return nil, err
		}
	}
	dopts := append(DialOptions(opts), extra...)
	return grpc.DialContext(ctx, "passthrough:///"+endpoint, dopts...)
}

// ServerOptions 构造 gRPC server 参数，tlsCfg 为空时不启用 TLS。
func ServerOptions(tlsCfg *tls.Config) []grpc.ServerOption {
	opts := []grpc.ServerOption{
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	if tlsCfg != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsCfg)))
	}
	return opts
}
