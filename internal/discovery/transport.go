package discovery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/aegis-sign/jadesigner/internal/transport"
)

// Transport 抽象一种发现通道：本地 socket 或网络数据报。
type Transport interface {
	Name() string
	Exchange(ctx context.Context, q Query) ([]Announcement, error)
}

// StreamTransport 通过本地流式端点（unix socket / vsock）查询 signer。
type StreamTransport struct {
	Endpoint string
}

// Name 实现 Transport。
func (t StreamTransport) Name() string { return "local" }

// Exchange 发送一次查询并读取一条应答。
func (t StreamTransport) Exchange(ctx context.Context, q Query) ([]Announcement, error) {
	conn, err := transport.DialString(ctx, t.Endpoint)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()
	if err := writeFrame(conn, q.Marshal()); err != nil {
		return nil, err
	}
	raw, err := readFrame(bufio.NewReader(conn))
	if err != nil {
		return nil, err
	}
	ann, err := UnmarshalAnnouncement(raw)
	if err != nil {
		return nil, err
	}
	return []Announcement{ann}, nil
}

// PacketTransport 通过 UDP 向一组已知地址（可为广播地址）发送查询并收集应答。
type PacketTransport struct {
	Peers []string
}

// Name 实现 Transport。
func (t PacketTransport) Name() string { return "network" }

// Exchange 在 ctx 截止前收集应答；收到兼容且可用的应答后立即返回。
func (t PacketTransport) Exchange(ctx context.Context, q Query) ([]Announcement, error) {
	if len(t.Peers) == 0 {
		return nil, fmt.Errorf("no discovery peers configured")
	}
	desired, err := ParseVersion(q.DesiredVersion)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	msg := q.Marshal()
	sent := 0
	for _, peer := range t.Peers {
		addr, err := net.ResolveUDPAddr("udp", peer)
		if err != nil {
			continue
		}
		if _, err := conn.WriteTo(msg, addr); err == nil {
			sent++
		}
	}
	if sent == 0 {
		return nil, fmt.Errorf("discovery query could not be sent to any peer")
	}

	var anns []Announcement
	buf := make([]byte, maxMessageSize)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) || ctx.Err() != nil {
				return anns, nil
			}
			return anns, err
		}
		ann, err := UnmarshalAnnouncement(buf[:n])
		if err != nil || ann.Nonce != q.Nonce {
			continue
		}
		anns = append(anns, ann)
		if usable(ann, desired) {
			return anns, nil
		}
	}
}

func usable(ann Announcement, desired Version) bool {
	if ann.Status != StatusOK || ann.Endpoint == "" {
		return false
	}
	v, err := ParseVersion(ann.Version)
	return err == nil && v.CompatibleWith(desired)
}
