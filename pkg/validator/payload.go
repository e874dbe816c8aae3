package validator

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PayloadEncoding 描述 payload 字符串的编码。
type PayloadEncoding string

const (
	PayloadEncodingHex    PayloadEncoding = "hex"
	PayloadEncodingBase64 PayloadEncoding = "base64"
	PayloadEncodingJSON   PayloadEncoding = "json"
)

// MaxPayloadBytes 限制单个待签名 payload 的大小。
const MaxPayloadBytes = 128 * 1024

var (
	errEmptyPayload    = errors.New("payload must not be empty")
	errPayloadTooLarge = fmt.Errorf("payload exceeds %d bytes", MaxPayloadBytes)
)

// NormalizeEncoding 将用户输入转换为内部常量，空值视为 json。
func NormalizeEncoding(raw string) (PayloadEncoding, error) {
	switch strings.ToLower(raw) {
	case "", string(PayloadEncodingJSON):
		return PayloadEncodingJSON, nil
	case string(PayloadEncodingHex):
		return PayloadEncodingHex, nil
	case string(PayloadEncodingBase64):
		return PayloadEncodingBase64, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", raw)
	}
}

// DecodePayload 将 payload 解码为二进制并检查大小。
func DecodePayload(payload string, enc PayloadEncoding) ([]byte, error) {
	var (
		decoded []byte
		err     error
	)
	switch enc {
	case PayloadEncodingJSON:
		decoded = []byte(payload)
	case PayloadEncodingHex:
		decoded, err = hex.DecodeString(strings.TrimPrefix(payload, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
	case PayloadEncodingBase64:
		decoded, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
	return decoded, CheckPayloadSize(decoded)
}

// CheckPayloadSize 确保 payload 非空且不超过上限。
func CheckPayloadSize(payload []byte) error {
	if len(payload) == 0 {
		return errEmptyPayload
	}
	if len(payload) > MaxPayloadBytes {
		return errPayloadTooLarge
	}
	return nil
}

// ParseAddress 校验并解析 0x 前缀的账户地址。
func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid account address %q", raw)
	}
	return common.HexToAddress(raw), nil
}
