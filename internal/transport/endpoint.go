// Package transport 封装 signer 与 UI 之间使用的本地/网络传输端点。
package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Network 取值。
const (
	NetworkUnix  = "unix"
	NetworkVsock = "vsock"
	NetworkTCP   = "tcp"
)

// Endpoint 是解析后的传输端点。
type Endpoint struct {
	Network string
	Address string
	// CID/Port 仅对 vsock 有效。
	CID  uint32
	Port uint32
}

// ParseEndpoint 支持 unix:///path、unix:/path、vsock://cid:port、vsock:cid:port、
// tcp://host:port 以及裸 host:port。
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("empty endpoint")
	}
	switch {
	case strings.HasPrefix(raw, "unix://"):
		return unixEndpoint(strings.TrimPrefix(raw, "unix://"))
	case strings.HasPrefix(raw, "unix:"):
		return unixEndpoint(strings.TrimPrefix(raw, "unix:"))
	case strings.HasPrefix(raw, "vsock://"):
		return vsockEndpoint(strings.TrimPrefix(raw, "vsock://"))
	case strings.HasPrefix(raw, "vsock:"):
		return vsockEndpoint(strings.TrimPrefix(raw, "vsock:"))
	case strings.HasPrefix(raw, "tcp://"):
		return tcpEndpoint(strings.TrimPrefix(raw, "tcp://"))
	default:
		return tcpEndpoint(raw)
	}
}

func unixEndpoint(path string) (Endpoint, error) {
	if path == "" {
		return Endpoint{}, fmt.Errorf("unix endpoint requires a socket path")
	}
	return Endpoint{Network: NetworkUnix, Address: path}, nil
}

func vsockEndpoint(target string) (Endpoint, error) {
	parts := strings.Split(target, ":")
	if len(parts) != 2 {
		return Endpoint{}, fmt.Errorf("invalid vsock endpoint: %s", target)
	}
	cid, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid vsock cid: %w", err)
	}
	port, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid vsock port: %w", err)
	}
	return Endpoint{Network: NetworkVsock, Address: target, CID: uint32(cid), Port: uint32(port)}, nil
}

func tcpEndpoint(hostport string) (Endpoint, error) {
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return Endpoint{}, fmt.Errorf("invalid tcp endpoint %q: %w", hostport, err)
	}
	return Endpoint{Network: NetworkTCP, Address: hostport}, nil
}

// String 返回规范化后的端点字符串，可被 ParseEndpoint 再次解析。
func (e Endpoint) String() string {
	switch e.Network {
	case NetworkUnix:
		return "unix:" + e.Address
	case NetworkVsock:
		return "vsock:" + e.Address
	default:
		return e.Address
	}
}

// IsLocal 表示端点不经过网络栈（unix socket 或 vsock）。
func (e Endpoint) IsLocal() bool {
	return e.Network == NetworkUnix || e.Network == NetworkVsock
}

// Remote 表示端点可被其他主机拨号：tcp 且主机名不是空或通配地址。
func (e Endpoint) Remote() bool {
	if e.Network != NetworkTCP {
		return false
	}
	host, _, err := net.SplitHostPort(e.Address)
	if err != nil || host == "" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		return false
	}
	return true
}
