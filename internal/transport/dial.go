package transport

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/mdlayher/vsock"
)

// Dial 按端点类型建立连接，vsock 拨号同样受 ctx 控制。
func Dial(ctx context.Context, ep Endpoint) (net.Conn, error) {
	switch ep.Network {
	case NetworkUnix:
		return (&net.Dialer{}).DialContext(ctx, "unix", ep.Address)
	case NetworkVsock:
		return dialVsock(ctx, ep.CID, ep.Port)
	default:
		return (&net.Dialer{}).DialContext(ctx, "tcp", ep.Address)
	}
}

// DialString 先解析再拨号。
func DialString(ctx context.Context, raw string) (net.Conn, error) {
	ep, err := ParseEndpoint(raw)
	if err != nil {
		return nil, err
	}
	return Dial(ctx, ep)
}

func dialVsock(ctx context.Context, cid, port uint32) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, dialErr := vsock.Dial(cid, port, nil)
		resultCh <- dialResult{conn: conn, err: dialErr}
	}()
	select {
	case <-ctx.Done():
		go func() {
			if res := <-resultCh; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.conn, res.err
	}
}

// Listen 在端点上监听；unix socket 会先清理残留的 socket 文件。
func Listen(ep Endpoint) (net.Listener, error) {
	switch ep.Network {
	case NetworkUnix:
		if err := os.Remove(ep.Address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return net.Listen("unix", ep.Address)
	case NetworkVsock:
		return vsock.Listen(ep.Port, nil)
	default:
		return net.Listen("tcp", ep.Address)
	}
}

// ListenString 先解析再监听。
func ListenString(raw string) (net.Listener, error) {
	ep, err := ParseEndpoint(raw)
	if err != nil {
		return nil, err
	}
	return Listen(ep)
}
