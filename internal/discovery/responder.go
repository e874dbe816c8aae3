package discovery

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/google/uuid"
)

const streamIOTimeout = 2 * time.Second

// Responder 运行在 signer 侧，对发现查询应答自身的 gRPC 端点与版本。
type Responder struct {
	endpoint string
	// networkEndpoint 是经 UDP 应答的地址，必须能被其他主机拨号；为空时不应答网络查询。
	networkEndpoint string
	version         Version
	instanceID      string
	logger          *slog.Logger
	networkSet      bool
}

// ResponderOption 自定义 Responder。
type ResponderOption func(*Responder)

// WithResponderLogger 注入 slog Logger。
func WithResponderLogger(l *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithInstanceID 指定实例 ID，默认随机生成。
func WithInstanceID(id string) ResponderOption {
	return func(r *Responder) {
		if id != "" {
			r.instanceID = id
		}
	}
}

// WithNetworkEndpoint 指定经 UDP 应答的 gRPC 地址，默认沿用 endpoint（仅当其可远程拨号时）。
func WithNetworkEndpoint(endpoint string) ResponderOption {
	return func(r *Responder) {
		r.networkEndpoint = endpoint
		r.networkSet = true
	}
}

// NewResponder 创建 Responder，endpoint 是本机通道应答的 gRPC 地址。
func NewResponder(endpoint string, version Version, opts ...ResponderOption) *Responder {
	r := &Responder{
		endpoint:   endpoint,
		version:    version,
		instanceID: uuid.NewString(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.networkSet {
		r.networkEndpoint = endpoint
	}
	if ep, err := transport.ParseEndpoint(r.networkEndpoint); err != nil || !ep.Remote() {
		r.networkEndpoint = ""
	}
	return r
}

// NetworkEndpoint 返回经 UDP 应答的地址，为空表示不响应网络查询。
func (r *Responder) NetworkEndpoint() string { return r.networkEndpoint }

// InstanceID 返回应答中携带的实例 ID。
func (r *Responder) InstanceID() string { return r.instanceID }

// Answer 根据查询版本生成本机通道的应答；major 不一致时标记为不兼容。
func (r *Responder) Answer(q Query) (Announcement, bool) {
	return r.answer(q, r.endpoint)
}

func (r *Responder) answer(q Query, endpoint string) (Announcement, bool) {
	if q.Role != "" && q.Role != RoleSigner {
		return Announcement{}, false
	}
	ann := Announcement{
		Endpoint:   endpoint,
		Version:    r.version.String(),
		InstanceID: r.instanceID,
		Nonce:      q.Nonce,
	}
	desired, err := ParseVersion(q.DesiredVersion)
	if err != nil || !r.version.CompatibleWith(desired) {
		ann.Status = StatusIncompatible
		ann.Endpoint = ""
	}
	return ann, true
}

// ServePacket 在数据报通道（UDP）上应答查询，直到 ctx 结束。
func (r *Responder) ServePacket(ctx context.Context, conn net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	if r.networkEndpoint == "" {
		r.logger.Warn("no remotely dialable endpoint to advertise; network discovery queries are ignored",
			slog.String("endpoint", r.endpoint))
	}
	buf := make([]byte, maxMessageSize)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		q, err := UnmarshalQuery(buf[:n])
		if err != nil {
			r.logger.Debug("drop malformed discovery query", slog.String("from", addr.String()), slog.Any("error", err))
			continue
		}
		if r.networkEndpoint == "" {
			continue
		}
		ann, ok := r.answer(q, r.networkEndpoint)
		if !ok {
			continue
		}
		if _, err := conn.WriteTo(ann.Marshal(), addr); err != nil {
			r.logger.Warn("discovery reply failed", slog.String("to", addr.String()), slog.Any("error", err))
		}
	}
}

// ServeStream 在本地流式通道（unix socket / vsock）上应答查询，每个连接一问一答。
func (r *Responder) ServeStream(ctx context.Context, lis net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = lis.Close() })
	defer stop()
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go r.handleStream(conn)
	}
}

func (r *Responder) handleStream(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(streamIOTimeout))
	raw, err := readFrame(bufio.NewReader(conn))
	if err != nil {
		r.logger.Debug("read discovery query failed", slog.Any("error", err))
		return
	}
	q, err := UnmarshalQuery(raw)
	if err != nil {
		r.logger.Debug("drop malformed discovery query", slog.Any("error", err))
		return
	}
	ann, ok := r.Answer(q)
	if !ok {
		return
	}
	if err := writeFrame(conn, ann.Marshal()); err != nil {
		r.logger.Warn("discovery reply failed", slog.Any("error", err))
	}
}
