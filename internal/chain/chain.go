// Package chain 把签名后的交易广播到以太坊节点。本包不做重试。
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Broadcaster 发送已签名的原始交易。
type Broadcaster interface {
	Broadcast(ctx context.Context, signedTx []byte) (common.Hash, error)
}

// Backend 是 EthBroadcaster 依赖的节点能力，*ethclient.Client 满足该接口。
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// EthBroadcaster 通过 JSON-RPC 节点广播交易。
type EthBroadcaster struct {
	backend Backend
	closeFn func()
}

// Dial 连接 rpcURL 指定的节点。
func Dial(ctx context.Context, rpcURL string) (*EthBroadcaster, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}
	return &EthBroadcaster{backend: client, closeFn: client.Close}, nil
}

// NewEthBroadcaster 基于已有连接构造。
func NewEthBroadcaster(backend Backend) *EthBroadcaster {
	return &EthBroadcaster{backend: backend}
}

// Close 关闭由 Dial 建立的连接。
func (b *EthBroadcaster) Close() {
	if b.closeFn != nil {
		b.closeFn()
	}
}

// Broadcast 校验交易的链 ID 与节点一致后发送。
func (b *EthBroadcaster) Broadcast(ctx context.Context, signedTx []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("decode signed transaction: %w", err)
	}
	chainID, err := b.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("query chain id: %w", err)
	}
	if txChain := tx.ChainId(); txChain != nil && txChain.Sign() != 0 && txChain.Cmp(chainID) != 0 {
		return common.Hash{}, fmt.Errorf("transaction chain id %s does not match node chain id %s", txChain, chainID)
	}
	if err := b.backend.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return tx.Hash(), nil
}

// TxDefaults 是构造交易时从节点读取的默认值。
type TxDefaults struct {
	ChainID  *big.Int
	Nonce    uint64
	GasPrice *big.Int
}

// Defaults 读取 account 的 pending nonce、建议 gas price 与链 ID。
func (b *EthBroadcaster) Defaults(ctx context.Context, account common.Address) (TxDefaults, error) {
	chainID, err := b.backend.ChainID(ctx)
	if err != nil {
		return TxDefaults{}, fmt.Errorf("query chain id: %w", err)
	}
	nonce, err := b.backend.PendingNonceAt(ctx, account)
	if err != nil {
		return TxDefaults{}, fmt.Errorf("query nonce: %w", err)
	}
	price, err := b.backend.SuggestGasPrice(ctx)
	if err != nil {
		return TxDefaults{}, fmt.Errorf("query gas price: %w", err)
	}
	return TxDefaults{ChainID: chainID, Nonce: nonce, GasPrice: price}, nil
}
