package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout 是单次发现的上限。
const DefaultTimeout = 2 * time.Second

// ServiceEndpoint 是发现结果，创建后不可变。
type ServiceEndpoint struct {
	Address    string
	Version    Version
	InstanceID string
	Via        string
}

// Client 依次尝试配置的发现通道定位 signer。
type Client struct {
	transports []Transport
	timeout    time.Duration
	logger     *slog.Logger
	group      singleflight.Group
}

// ClientOption 自定义 Client。
type ClientOption func(*Client)

// WithTimeout 覆盖发现超时。
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger 注入 slog Logger。
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient 创建 Client，transports 按顺序尝试（通常本地优先）。
func NewClient(transports []Transport, opts ...ClientOption) *Client {
	c := &Client{
		transports: transports,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover 定位与 desired 同 major 的 signer。
// 所有应答都不兼容时返回 INCOMPATIBLE_VERSION，超时内无应答返回 SERVICE_UNAVAILABLE。
func (c *Client) Discover(ctx context.Context, desired string) (ServiceEndpoint, error) {
	want, err := ParseVersion(desired)
	if err != nil {
		return ServiceEndpoint{}, apierrors.New(apierrors.CodeInvalidArgument, err.Error())
	}
	ch := c.group.DoChan(want.String(), func() (any, error) {
		return c.discover(want)
	})
	select {
	case <-ctx.Done():
		return ServiceEndpoint{}, apierrors.New(apierrors.CodeServiceUnavailable, "discovery aborted")
	case res := <-ch:
		if res.Err != nil {
			return ServiceEndpoint{}, res.Err
		}
		return res.Val.(ServiceEndpoint), nil
	}
}

func (c *Client) discover(want Version) (ServiceEndpoint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	q := Query{DesiredVersion: want.String(), Nonce: rand.Uint64() | 1, Role: RoleSigner}

	var incompatible *Announcement
	for _, tr := range c.transports {
		if ctx.Err() != nil {
			break
		}
		anns, err := tr.Exchange(ctx, q)
		if err != nil {
			c.logger.Debug("discovery transport failed", slog.String("transport", tr.Name()), slog.Any("error", err))
			continue
		}
		for i := range anns {
			ann := anns[i]
			if ann.Nonce != q.Nonce {
				continue
			}
			if usable(ann, want) {
				v, _ := ParseVersion(ann.Version)
				c.logger.Debug("signer discovered", slog.String("transport", tr.Name()), slog.String("endpoint", ann.Endpoint), slog.String("version", v.String()))
				return ServiceEndpoint{Address: ann.Endpoint, Version: v, InstanceID: ann.InstanceID, Via: tr.Name()}, nil
			}
			incompatible = &ann
		}
	}
	if incompatible != nil {
		return ServiceEndpoint{}, apierrors.New(apierrors.CodeIncompatibleVersion,
			fmt.Sprintf("signer speaks protocol %s, want major %d", incompatible.Version, want.Major))
	}
	return ServiceEndpoint{}, apierrors.New(apierrors.CodeServiceUnavailable, "no signer answered discovery")
}
