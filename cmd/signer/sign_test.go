package main

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aegis-sign/jadesigner/internal/keystore"
	gethks "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestTxArgsFromFlagsWithoutChain(t *testing.T) {
	f := &signFlags{
		from:     "0x1111111111111111111111111111111111111111",
		gas:      21000,
		value:    "1000",
		gasPrice: "0x3b9aca00",
		nonce:    3,
		chainID:  5,
	}
	args, err := f.txArgs(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, uint64(3), uint64(args.Nonce))
	require.Equal(t, big.NewInt(5), args.ChainID.ToInt())
	require.Equal(t, big.NewInt(1_000_000_000), args.GasPrice.ToInt())
	require.Equal(t, big.NewInt(1000), args.Value.ToInt())
}

func TestTxArgsNeedsChainForMissingFields(t *testing.T) {
	f := &signFlags{from: "0x1111111111111111111111111111111111111111", gas: 21000, nonce: -1, chainID: 5, gasPrice: "1"}
	_, err := f.txArgs(context.Background(), nil)
	require.ErrorContains(t, err, "chain.rpc_url")

	f = &signFlags{from: "nope"}
	_, err = f.txArgs(context.Background(), nil)
	require.Error(t, err)

	f = &signFlags{from: "0x1111111111111111111111111111111111111111", value: "-1"}
	_, err = f.txArgs(context.Background(), nil)
	require.ErrorContains(t, err, "--value")
}

func TestVersionCommandSkipsConfig(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--config", "/does/not/exist.yaml"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "protocol 1.0.0")
}

func TestReadTypedDataFromStdin(t *testing.T) {
	in := strings.NewReader(`{"types":{"EIP712Domain":[{"name":"name","type":"string"}],"Note":[{"name":"text","type":"string"}]},"primaryType":"Note","domain":{"name":"notes"},"message":{"text":"hi"}}`)
	typed, err := readTypedData("-", in)
	require.NoError(t, err)
	require.Equal(t, "Note", typed.PrimaryType)
	require.Equal(t, "notes", typed.Domain.Name)
	require.Equal(t, "hi", typed.Message["text"])

	_, err = readTypedData("-", strings.NewReader(`{"types":{}}`))
	require.ErrorContains(t, err, "no primaryType")
}

func runSigner(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestAccountPasswdAndExport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "signer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("keystore:\n  dir: "+filepath.Join(dir, "keys")+"\n  light: true\n"), 0o600))

	addr, err := runSigner(t, "old\nold\n", "account", "new", "--config", cfgPath)
	require.NoError(t, err)
	require.True(t, common.IsHexAddress(addr))

	_, err = runSigner(t, "old\nnew\nother\n", "account", "passwd", addr, "--config", cfgPath)
	require.ErrorContains(t, err, "do not match")
	_, err = runSigner(t, "old\nnew\nnew\n", "account", "passwd", addr, "--config", cfgPath)
	require.NoError(t, err)

	out := filepath.Join(dir, "exported.json")
	_, err = runSigner(t, "old\nexport\n", "account", "export", addr, "--out", out, "--config", cfgPath)
	require.ErrorIs(t, err, keystore.ErrAuthentication)
	_, err = runSigner(t, "new\nexport\n", "account", "export", addr, "--out", out, "--config", cfgPath)
	require.NoError(t, err)

	keyJSON, err := os.ReadFile(out)
	require.NoError(t, err)
	key, err := gethks.DecryptKey(keyJSON, "export")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(addr), key.Address)
}
