// Package appclient 是应用侧的 signer 客户端：定位 signer、提交签名请求并可选广播交易。
package appclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	"github.com/aegis-sign/jadesigner/internal/chain"
	"github.com/aegis-sign/jadesigner/internal/discovery"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/grpc"
)

// ErrNoBroadcaster 表示未配置链客户端。
var ErrNoBroadcaster = errors.New("no chain broadcaster configured")

// Options 控制客户端连接。
type Options struct {
	TLS         *tls.Config
	Broadcaster chain.Broadcaster
	Logger      *slog.Logger
	// Transport 覆盖默认的 gRPC 拨号参数。
	Transport transport.ClientOptions
}

// Result 是一次成功签名的结果。
type Result struct {
	CorrelationID string
	Account       common.Address
	Signature     []byte
	SignedTx      []byte
	TxHash        common.Hash
}

// Client 同步提交签名请求。
type Client struct {
	conn        *grpc.ClientConn
	rpc         signerv1.SignerServiceClient
	broadcaster chain.Broadcaster
	logger      *slog.Logger
}

// Dial 连接到已知端点的 signer。
func Dial(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	copts := opts.Transport
	if opts.TLS != nil {
		copts.TLS = opts.TLS
	}
	conn, err := transport.DialGRPC(ctx, endpoint, copts)
	if err != nil {
		return nil, apierrors.New(apierrors.CodeServiceUnavailable, fmt.Sprintf("dial signer: %v", err))
	}
	c := New(signerv1.NewSignerServiceClient(conn), opts)
	c.conn = conn
	return c, nil
}

// Discover 通过发现协议定位与 version 兼容的 signer 后连接。
func Discover(ctx context.Context, dc *discovery.Client, version string, opts Options) (*Client, error) {
	ep, err := dc.Discover(ctx, version)
	if err != nil {
		return nil, err
	}
	c, err := Dial(ctx, ep.Address, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Info("connected to signer", slog.String("endpoint", ep.Address), slog.String("version", ep.Version.String()), slog.String("via", ep.Via))
	return c, nil
}

// New 基于已有 stub 构造客户端。
func New(rpc signerv1.SignerServiceClient, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{rpc: rpc, broadcaster: opts.Broadcaster, logger: logger}
}

// Close 关闭连接。
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Sign 提交原始 payload，阻塞直到 signer 返回终态。错误为 apierrors 业务错误。
func (c *Client) Sign(ctx context.Context, kind signer.PayloadKind, payload []byte, summary string) (*Result, error) {
	start := time.Now()
	resp, err := c.rpc.Sign(ctx, &signerv1.SignRequest{Kind: string(kind), Payload: payload, Summary: summary})
	if err != nil {
		err = apierrors.FromGRPC(err)
		c.logger.Info("sign request failed", slog.String("code", string(apierrors.CodeOf(err))), slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	res := &Result{
		CorrelationID: resp.GetCorrelationId(),
		Account:       common.HexToAddress(resp.GetAccount()),
		Signature:     resp.GetSignature(),
		SignedTx:      resp.GetSignedTx(),
	}
	if h := resp.GetTxHash(); h != "" {
		res.TxHash = common.HexToHash(h)
	}
	return res, nil
}

// SignTransaction 签名一笔交易。
func (c *Client) SignTransaction(ctx context.Context, tx signer.TxArgs, summary string) (*Result, error) {
	raw, err := tx.Encode()
	if err != nil {
		return nil, apierrors.New(apierrors.CodeInvalidArgument, err.Error())
	}
	return c.Sign(ctx, signer.KindTransaction, raw, summary)
}

// SignData 对任意数据做 personal-sign。
func (c *Client) SignData(ctx context.Context, data signer.DataArgs, summary string) (*Result, error) {
	raw, err := data.Encode()
	if err != nil {
		return nil, apierrors.New(apierrors.CodeInvalidArgument, err.Error())
	}
	return c.Sign(ctx, signer.KindData, raw, summary)
}

// SignTypedData 对 EIP-712 结构化数据签名。
func (c *Client) SignTypedData(ctx context.Context, data signer.TypedDataArgs, summary string) (*Result, error) {
	raw, err := data.Encode()
	if err != nil {
		return nil, apierrors.New(apierrors.CodeInvalidArgument, err.Error())
	}
	return c.Sign(ctx, signer.KindTypedData, raw, summary)
}

// SignAndBroadcast 签名后通过链客户端广播，返回节点接受的交易哈希。
func (c *Client) SignAndBroadcast(ctx context.Context, tx signer.TxArgs, summary string) (*Result, error) {
	if c.broadcaster == nil {
		return nil, ErrNoBroadcaster
	}
	res, err := c.SignTransaction(ctx, tx, summary)
	if err != nil {
		return nil, err
	}
	hash, err := c.broadcaster.Broadcast(ctx, res.SignedTx)
	if err != nil {
		return res, fmt.Errorf("broadcast %s: %w", res.CorrelationID, err)
	}
	res.TxHash = hash
	c.logger.Info("transaction broadcast", slog.String("correlation_id", res.CorrelationID), slog.String("tx_hash", hash.Hex()))
	return res, nil
}
