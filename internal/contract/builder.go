// Package contract 把合约方法调用打包成待签名的交易 payload 与可读摘要。
package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Builder 针对一个已部署合约构造调用交易。
type Builder struct {
	abi     abi.ABI
	address common.Address
}

// NewBuilder 解析 ABI JSON。
func NewBuilder(abiJSON string, address common.Address) (*Builder, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	return &Builder{abi: parsed, address: address}, nil
}

// TxParams 是调用交易中与方法无关的字段。
type TxParams struct {
	From     common.Address
	ChainID  *big.Int
	Nonce    uint64
	Gas      uint64
	GasPrice *big.Int
	// MaxFeePerGas 非空时构造 EIP-1559 交易，GasPrice 被忽略。
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Value                *big.Int
}

// Call 返回调用 method 的交易 payload 与展示给用户的摘要。
func (b *Builder) Call(params TxParams, method string, args ...any) (signer.TxArgs, string, error) {
	m, ok := b.abi.Methods[method]
	if !ok {
		return signer.TxArgs{}, "", fmt.Errorf("method %q not found in abi", method)
	}
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return signer.TxArgs{}, "", fmt.Errorf("pack %s: %w", method, err)
	}
	to := b.address
	txArgs := signer.TxArgs{
		From:  params.From,
		To:    &to,
		Gas:   hexutil.Uint64(params.Gas),
		Data:  data,
		Nonce: hexutil.Uint64(params.Nonce),
	}
	if params.ChainID != nil {
		txArgs.ChainID = (*hexutil.Big)(params.ChainID)
	}
	if params.Value != nil {
		txArgs.Value = (*hexutil.Big)(params.Value)
	}
	if params.MaxFeePerGas != nil {
		txArgs.MaxFeePerGas = (*hexutil.Big)(params.MaxFeePerGas)
		if params.MaxPriorityFeePerGas != nil {
			txArgs.MaxPriorityFeePerGas = (*hexutil.Big)(params.MaxPriorityFeePerGas)
		}
	} else if params.GasPrice != nil {
		txArgs.GasPrice = (*hexutil.Big)(params.GasPrice)
	}
	return txArgs, describe(m, b.address, args), nil
}

func describe(m abi.Method, address common.Address, args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		name := fmt.Sprintf("arg%d", i)
		if i < len(m.Inputs) && m.Inputs[i].Name != "" {
			name = m.Inputs[i].Name
		}
		parts[i] = fmt.Sprintf("%s=%s", name, formatArg(arg))
	}
	return fmt.Sprintf("call %s on %s (%s)", m.Sig, address.Hex(), strings.Join(parts, ", "))
}

func formatArg(v any) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	default:
		return fmt.Sprint(x)
	}
}
