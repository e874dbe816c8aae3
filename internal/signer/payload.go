package signer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Payload 是解码后的待签名内容。
type Payload interface {
	Kind() PayloadKind
	Account() common.Address
	// Summary 返回由内容推导出的可读摘要，展示给用户确认。
	Summary() string
	Sign(key Key) (*SignedResult, error)
}

// TxArgs 是交易 payload 的 JSON 形式，数值均为 0x 十六进制。
type TxArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value,omitempty"`
	Data                 hexutil.Bytes   `json:"data,omitempty"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	ChainID              *hexutil.Big    `json:"chainId"`
}

// Encode 序列化为可放入 SignRequest.Payload 的字节。
func (a TxArgs) Encode() ([]byte, error) {
	return json.Marshal(a)
}

func (a TxArgs) validate() error {
	if a.ChainID == nil || a.ChainID.ToInt().Sign() <= 0 {
		return fmt.Errorf("chainId is required")
	}
	if a.Gas == 0 {
		return fmt.Errorf("gas is required")
	}
	switch {
	case a.GasPrice != nil && (a.MaxFeePerGas != nil || a.MaxPriorityFeePerGas != nil):
		return fmt.Errorf("gasPrice cannot be combined with maxFeePerGas/maxPriorityFeePerGas")
	case a.GasPrice == nil && a.MaxFeePerGas == nil:
		return fmt.Errorf("either gasPrice or maxFeePerGas is required")
	}
	if a.To == nil && len(a.Data) == 0 {
		return fmt.Errorf("contract creation requires data")
	}
	return nil
}

func (a TxArgs) value() *big.Int {
	if a.Value == nil {
		return new(big.Int)
	}
	return a.Value.ToInt()
}

func (a TxArgs) transaction() *types.Transaction {
	if a.MaxFeePerGas != nil {
		tip := new(big.Int)
		if a.MaxPriorityFeePerGas != nil {
			tip = a.MaxPriorityFeePerGas.ToInt()
		}
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   a.ChainID.ToInt(),
			Nonce:     uint64(a.Nonce),
			GasTipCap: tip,
			GasFeeCap: a.MaxFeePerGas.ToInt(),
			Gas:       uint64(a.Gas),
			To:        a.To,
			Value:     a.value(),
			Data:      a.Data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    uint64(a.Nonce),
		GasPrice: a.GasPrice.ToInt(),
		Gas:      uint64(a.Gas),
		To:       a.To,
		Value:    a.value(),
		Data:     a.Data,
	})
}

type txPayload struct {
	args TxArgs
}

func (p txPayload) Kind() PayloadKind       { return KindTransaction }
func (p txPayload) Account() common.Address { return p.args.From }

func (p txPayload) Summary() string {
	var b strings.Builder
	to := "<contract creation>"
	if p.args.To != nil {
		to = p.args.To.Hex()
	}
	fmt.Fprintf(&b, "transaction on chain %s: %s -> %s, value %s wei, nonce %d, gas %d",
		p.args.ChainID.ToInt().String(), p.args.From.Hex(), to, p.args.value().String(), uint64(p.args.Nonce), uint64(p.args.Gas))
	if p.args.GasPrice != nil {
		fmt.Fprintf(&b, ", gasPrice %s wei", p.args.GasPrice.ToInt().String())
	} else {
		fmt.Fprintf(&b, ", maxFeePerGas %s wei", p.args.MaxFeePerGas.ToInt().String())
	}
	if n := len(p.args.Data); n > 0 {
		fmt.Fprintf(&b, ", data %d bytes", n)
		if n >= 4 {
			fmt.Fprintf(&b, " (selector %s)", hexutil.Encode(p.args.Data[:4]))
		}
	}
	return b.String()
}

func (p txPayload) Sign(key Key) (*SignedResult, error) {
	tx := p.args.transaction()
	txSigner := types.LatestSignerForChainID(p.args.ChainID.ToInt())
	hash := txSigner.Hash(tx)
	sig, err := key.Sign(hash.Bytes())
	if err != nil {
		return nil, err
	}
	signed, err := tx.WithSignature(txSigner, sig)
	if err != nil {
		return nil, fmt.Errorf("attach signature: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode signed transaction: %w", err)
	}
	return &SignedResult{
		Account:   key.Address(),
		Signature: sig,
		SignedTx:  raw,
		TxHash:    signed.Hash(),
	}, nil
}

// DataArgs 是任意数据签名（EIP-191 personal_sign）的 JSON 形式。
type DataArgs struct {
	From common.Address `json:"from"`
	Data hexutil.Bytes  `json:"data"`
}

// Encode 序列化为可放入 SignRequest.Payload 的字节。
func (a DataArgs) Encode() ([]byte, error) {
	return json.Marshal(a)
}

type dataPayload struct {
	args DataArgs
}

func (p dataPayload) Kind() PayloadKind       { return KindData }
func (p dataPayload) Account() common.Address { return p.args.From }

func (p dataPayload) Summary() string {
	preview := p.args.Data
	if isPrintable(preview) {
		text := string(preview)
		if len(text) > 120 {
			text = text[:120] + "..."
		}
		return fmt.Sprintf("sign message as %s: %q", p.args.From.Hex(), text)
	}
	return fmt.Sprintf("sign %d bytes of data as %s: %s", len(preview), p.args.From.Hex(), abbreviate(hexutil.Encode(preview)))
}

func (p dataPayload) Sign(key Key) (*SignedResult, error) {
	sig, err := key.Sign(accounts.TextHash(p.args.Data))
	if err != nil {
		return nil, err
	}
	sig[recoveryIDIndex] += 27
	return &SignedResult{Account: key.Address(), Signature: sig}, nil
}

// TypedDataArgs 是 EIP-712 结构化数据签名的 JSON 形式。
type TypedDataArgs struct {
	From      common.Address     `json:"from"`
	TypedData apitypes.TypedData `json:"typedData"`
}

// Encode 序列化为可放入 SignRequest.Payload 的字节。
func (a TypedDataArgs) Encode() ([]byte, error) {
	return json.Marshal(a)
}

type typedDataPayload struct {
	args TypedDataArgs
	hash []byte
}

func (p typedDataPayload) Kind() PayloadKind       { return KindTypedData }
func (p typedDataPayload) Account() common.Address { return p.args.From }

func (p typedDataPayload) Summary() string {
	domain := p.args.TypedData.Domain
	var b strings.Builder
	fmt.Fprintf(&b, "sign typed data %s as %s", p.args.TypedData.PrimaryType, p.args.From.Hex())
	if domain.Name != "" {
		fmt.Fprintf(&b, "\ndomain: %s %s", domain.Name, domain.Version)
	}
	if domain.ChainId != nil {
		fmt.Fprintf(&b, "\nchain id: %s", (*big.Int)(domain.ChainId).String())
	}
	if domain.VerifyingContract != "" {
		fmt.Fprintf(&b, "\ncontract: %s", domain.VerifyingContract)
	}
	if fields, err := p.args.TypedData.Format(); err == nil {
		for _, f := range fields {
			if f.Name == "EIP712Domain" {
				continue
			}
			b.WriteString("\n")
			b.WriteString(strings.TrimRight(f.Pprint(0), "\n"))
		}
	}
	b.WriteString("\nhash: " + hexutil.Encode(p.hash))
	return b.String()
}

func (p typedDataPayload) Sign(key Key) (*SignedResult, error) {
	sig, err := key.Sign(p.hash)
	if err != nil {
		return nil, err
	}
	sig[recoveryIDIndex] += 27
	return &SignedResult{Account: key.Address(), Signature: sig}, nil
}

// recoveryIDIndex 是 [R || S || V] 中 V 的下标。
const recoveryIDIndex = 64

// DecodePayload 按 kind 解码 payload，拒绝未知字段。
func DecodePayload(kind PayloadKind, raw []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	switch kind {
	case KindTransaction:
		var args TxArgs
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("decode transaction payload: %w", err)
		}
		if args.From == (common.Address{}) {
			return nil, fmt.Errorf("from is required")
		}
		if err := args.validate(); err != nil {
			return nil, err
		}
		return txPayload{args: args}, nil
	case KindData:
		var args DataArgs
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("decode data payload: %w", err)
		}
		if args.From == (common.Address{}) {
			return nil, fmt.Errorf("from is required")
		}
		if len(args.Data) == 0 {
			return nil, fmt.Errorf("data is required")
		}
		return dataPayload{args: args}, nil
	case KindTypedData:
		var args TypedDataArgs
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("decode typed data payload: %w", err)
		}
		if args.From == (common.Address{}) {
			return nil, fmt.Errorf("from is required")
		}
		if args.TypedData.PrimaryType == "" {
			return nil, fmt.Errorf("typedData.primaryType is required")
		}
		if _, ok := args.TypedData.Types[args.TypedData.PrimaryType]; !ok {
			return nil, fmt.Errorf("typedData.types does not define %s", args.TypedData.PrimaryType)
		}
		hash, _, err := apitypes.TypedDataAndHash(args.TypedData)
		if err != nil {
			return nil, fmt.Errorf("hash typed data: %w", err)
		}
		return typedDataPayload{args: args, hash: hash}, nil
	default:
		return nil, fmt.Errorf("unsupported payload kind %q", kind)
	}
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return len(b) > 0
}

func abbreviate(s string) string {
	if len(s) <= 42 {
		return s
	}
	return s[:22] + "..." + s[len(s)-16:]
}
