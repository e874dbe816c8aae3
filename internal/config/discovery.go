package config

import (
	"log/slog"

	"github.com/aegis-sign/jadesigner/internal/discovery"
)

// Transports 返回按优先级排列的发现通道：先本机端点，再网络 peer。
func (d DiscoveryConfig) Transports() []discovery.Transport {
	var out []discovery.Transport
	if d.LocalEndpoint != "" {
		out = append(out, discovery.StreamTransport{Endpoint: d.LocalEndpoint})
	}
	if len(d.Peers) > 0 {
		out = append(out, discovery.PacketTransport{Peers: d.Peers})
	}
	return out
}

// NewClient 构造发现客户端。
func (d DiscoveryConfig) NewClient(logger *slog.Logger) *discovery.Client {
	return discovery.NewClient(d.Transports(), discovery.WithTimeout(d.Timeout), discovery.WithLogger(logger))
}
