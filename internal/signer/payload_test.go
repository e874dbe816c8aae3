package signer

import (
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransactionPayloadValidation(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	base := func() TxArgs {
		return TxArgs{
			From:     from,
			To:       &to,
			Gas:      21000,
			GasPrice: (*hexutil.Big)(big.NewInt(1)),
			ChainID:  (*hexutil.Big)(big.NewInt(1)),
		}
	}
	cases := []struct {
		name   string
		mutate func(*TxArgs)
		errMsg string
	}{
		{"missing chain id", func(a *TxArgs) { a.ChainID = nil }, "chainId is required"},
		{"missing gas", func(a *TxArgs) { a.Gas = 0 }, "gas is required"},
		{"mixed fee fields", func(a *TxArgs) { a.MaxFeePerGas = (*hexutil.Big)(big.NewInt(2)) }, "cannot be combined"},
		{"no fee fields", func(a *TxArgs) { a.GasPrice = nil }, "either gasPrice or maxFeePerGas"},
		{"creation without data", func(a *TxArgs) { a.To = nil }, "contract creation requires data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := base()
			tc.mutate(&args)
			raw, err := args.Encode()
			require.NoError(t, err)
			_, err = DecodePayload(KindTransaction, raw)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}

	raw, err := base().Encode()
	require.NoError(t, err)
	p, err := DecodePayload(KindTransaction, raw)
	require.NoError(t, err)
	require.Equal(t, from, p.Account())
	require.Contains(t, p.Summary(), to.Hex())
}

func TestDecodePayloadRejectsUnknownFields(t *testing.T) {
	_, err := DecodePayload(KindData, []byte(`{"from":"0x1111111111111111111111111111111111111111","data":"0x01","extra":1}`))
	require.Error(t, err)
	_, err = DecodePayload(KindData, []byte(`{"from":"0x1111111111111111111111111111111111111111"}`))
	require.ErrorContains(t, err, "data is required")
}

func TestDynamicFeeTransactionSigning(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(priv.PublicKey)
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	raw, err := TxArgs{
		From:                 from,
		To:                   &to,
		Gas:                  50000,
		MaxFeePerGas:         (*hexutil.Big)(big.NewInt(30_000_000_000)),
		MaxPriorityFeePerGas: (*hexutil.Big)(big.NewInt(1_000_000_000)),
		Data:                 hexutil.Bytes{0xa9, 0x05, 0x9c, 0xbb, 0x00},
		ChainID:              (*hexutil.Big)(big.NewInt(10)),
	}.Encode()
	require.NoError(t, err)

	p, err := DecodePayload(KindTransaction, raw)
	require.NoError(t, err)
	require.Contains(t, p.Summary(), "selector 0xa9059cbb")

	res, err := p.Sign(ecdsaKey{priv: priv, zeroed: new(atomic.Bool)})
	require.NoError(t, err)
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(res.SignedTx))
	require.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(10)), tx)
	require.NoError(t, err)
	require.Equal(t, from, sender)
}

func TestDataSummaryForBinaryData(t *testing.T) {
	p, err := DecodePayload(KindData, []byte(`{"from":"0x1111111111111111111111111111111111111111","data":"0x00ff"}`))
	require.NoError(t, err)
	require.Contains(t, p.Summary(), "2 bytes")
	require.Contains(t, p.Summary(), "0x00ff")
}

const mailTypedData = `{
  "types": {
    "EIP712Domain": [
      {"name": "name", "type": "string"},
      {"name": "version", "type": "string"},
      {"name": "chainId", "type": "uint256"},
      {"name": "verifyingContract", "type": "address"}
    ],
    "Person": [
      {"name": "name", "type": "string"},
      {"name": "wallet", "type": "address"}
    ],
    "Mail": [
      {"name": "from", "type": "Person"},
      {"name": "to", "type": "Person"},
      {"name": "contents", "type": "string"}
    ]
  },
  "primaryType": "Mail",
  "domain": {
    "name": "Ether Mail",
    "version": "1",
    "chainId": 1,
    "verifyingContract": "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"
  },
  "message": {
    "from": {"name": "Cow", "wallet": "0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826"},
    "to": {"name": "Bob", "wallet": "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"},
    "contents": "Hello, Bob!"
  }
}`

func TestTypedDataSigning(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(priv.PublicKey)
	raw := []byte(`{"from":"` + from.Hex() + `","typedData":` + mailTypedData + `}`)

	p, err := DecodePayload(KindTypedData, raw)
	require.NoError(t, err)
	require.Equal(t, KindTypedData, p.Kind())
	require.Equal(t, from, p.Account())
	summary := p.Summary()
	require.Contains(t, summary, "sign typed data Mail")
	require.Contains(t, summary, "Ether Mail")
	require.Contains(t, summary, "Hello, Bob!")
	digest := "0xbe609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2"
	require.Contains(t, summary, digest)

	res, err := p.Sign(ecdsaKey{priv: priv, zeroed: new(atomic.Bool)})
	require.NoError(t, err)
	require.Contains(t, []byte{27, 28}, res.Signature[64])
	sig := append([]byte(nil), res.Signature...)
	sig[64] -= 27
	pub, err := crypto.SigToPub(hexutil.MustDecode(digest), sig)
	require.NoError(t, err)
	require.Equal(t, from, crypto.PubkeyToAddress(*pub))
}

func TestTypedDataValidation(t *testing.T) {
	from := `"from":"0x1111111111111111111111111111111111111111"`
	_, err := DecodePayload(KindTypedData, []byte(`{`+from+`,"typedData":{"types":{},"domain":{},"message":{}}}`))
	require.ErrorContains(t, err, "primaryType is required")

	_, err = DecodePayload(KindTypedData, []byte(`{`+from+`,"typedData":{"types":{"EIP712Domain":[]},"primaryType":"Missing","domain":{},"message":{}}}`))
	require.ErrorContains(t, err, "does not define Missing")

	_, err = DecodePayload(KindTypedData, []byte(`{`+from+`,"typedData":{"types":{"EIP712Domain":[],"Note":[{"name":"text","type":"string"}]},"primaryType":"Note","domain":{},"message":{"text":"hi"}}}`))
	require.ErrorContains(t, err, "hash typed data")
}
