package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseArgs 按方法的 ABI 输入类型把命令行字符串转换成 Pack 所需的 Go 值。
// 支持 address、bool、string、bytes、bytesN 与 (u)intN。
func (b *Builder) ParseArgs(method string, raw []string) ([]any, error) {
	m, ok := b.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q not found in abi", method)
	}
	if len(raw) != len(m.Inputs) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", m.Sig, len(m.Inputs), len(raw))
	}
	out := make([]any, len(raw))
	for i, input := range m.Inputs {
		v, err := parseArg(input.Type, strings.TrimSpace(raw[i]))
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, input.Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

func parseArg(typ abi.Type, s string) (any, error) {
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		raw, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(raw) != typ.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", typ.Size, len(raw))
		}
		v := reflect.New(typ.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(raw))
		return v.Interface(), nil
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		if typ.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for unsigned type")
		}
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("value overflows %d bits", typ.Size)
		}
		if typ.Size > 64 {
			return n, nil
		}
		v := reflect.New(typ.GetType()).Elem()
		if typ.T == abi.UintTy {
			v.SetUint(n.Uint64())
		} else {
			if !n.IsInt64() || v.OverflowInt(n.Int64()) {
				return nil, fmt.Errorf("value overflows int%d", typ.Size)
			}
			v.SetInt(n.Int64())
		}
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", typ.String())
	}
}
