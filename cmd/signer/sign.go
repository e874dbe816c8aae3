package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/aegis-sign/jadesigner/internal/appclient"
	"github.com/aegis-sign/jadesigner/internal/chain"
	"github.com/aegis-sign/jadesigner/internal/contract"
	"github.com/aegis-sign/jadesigner/internal/discovery"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/spf13/cobra"
)

// signFlags 是 sign 子命令共用的参数。
type signFlags struct {
	endpoint  string
	from      string
	note      string
	broadcast bool

	to          string
	value       string
	data        string
	gas         uint64
	gasPrice    string
	maxFee      string
	maxPriority string
	nonce       int64
	chainID     int64

	abiPath  string
	contract string
}

func newSignCommand(opts *rootOptions) *cobra.Command {
	flags := &signFlags{}
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Ask a running signer to sign a payload; the registered UI approves it",
	}
	cmd.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "signer endpoint; discovered when empty")
	cmd.PersistentFlags().StringVar(&flags.from, "from", "", "signing account address")
	cmd.PersistentFlags().StringVar(&flags.note, "note", "", "note shown to the user next to the summary")
	_ = cmd.MarkPersistentFlagRequired("from")

	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Sign a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), opts, flags, func(ctx context.Context, c *appclient.Client, b *chain.EthBroadcaster) error {
				data, err := decodeHexFlag(flags.data)
				if err != nil {
					return fmt.Errorf("--data: %w", err)
				}
				args, err := flags.txArgs(ctx, b)
				if err != nil {
					return err
				}
				if flags.to != "" {
					to := common.HexToAddress(flags.to)
					args.To = &to
				}
				args.Data = data
				return submitTx(ctx, cmd.OutOrStdout(), c, args, flags)
			})
		},
	}
	addTxFlags(txCmd, flags)
	txCmd.Flags().StringVar(&flags.to, "to", "", "recipient; empty for contract creation")
	txCmd.Flags().StringVar(&flags.data, "data", "", "hex call data")

	callCmd := &cobra.Command{
		Use:   "call <method> [args...]",
		Short: "Sign a contract method call built from an ABI file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abiJSON, err := os.ReadFile(flags.abiPath)
			if err != nil {
				return err
			}
			if !common.IsHexAddress(flags.contract) {
				return fmt.Errorf("--contract %q is not an address", flags.contract)
			}
			builder, err := contract.NewBuilder(string(abiJSON), common.HexToAddress(flags.contract))
			if err != nil {
				return err
			}
			callArgs, err := builder.ParseArgs(args[0], args[1:])
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), opts, flags, func(ctx context.Context, c *appclient.Client, b *chain.EthBroadcaster) error {
				base, err := flags.txArgs(ctx, b)
				if err != nil {
					return err
				}
				params := contract.TxParams{
					From:                 base.From,
					ChainID:              base.ChainID.ToInt(),
					Nonce:                uint64(base.Nonce),
					Gas:                  uint64(base.Gas),
					GasPrice:             (*big.Int)(base.GasPrice),
					MaxFeePerGas:         (*big.Int)(base.MaxFeePerGas),
					MaxPriorityFeePerGas: (*big.Int)(base.MaxPriorityFeePerGas),
					Value:                (*big.Int)(base.Value),
				}
				txArgs, summary, err := builder.Call(params, args[0], callArgs...)
				if err != nil {
					return err
				}
				if flags.note == "" {
					flags.note = summary
				}
				return submitTx(ctx, cmd.OutOrStdout(), c, txArgs, flags)
			})
		},
	}
	addTxFlags(callCmd, flags)
	callCmd.Flags().StringVar(&flags.abiPath, "abi", "", "path to the contract ABI JSON")
	callCmd.Flags().StringVar(&flags.contract, "contract", "", "contract address")
	_ = callCmd.MarkFlagRequired("abi")
	_ = callCmd.MarkFlagRequired("contract")

	dataCmd := &cobra.Command{
		Use:   "data <message>",
		Short: "Sign an arbitrary message (personal_sign style)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, flags, func(ctx context.Context, c *appclient.Client, _ *chain.EthBroadcaster) error {
				res, err := c.SignData(ctx, signer.DataArgs{From: common.HexToAddress(flags.from), Data: hexutil.Bytes(args[0])}, flags.note)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	typedCmd := &cobra.Command{
		Use:   "typed-data <file|->",
		Short: "Sign EIP-712 typed data read from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typed, err := readTypedData(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), opts, flags, func(ctx context.Context, c *appclient.Client, _ *chain.EthBroadcaster) error {
				res, err := c.SignTypedData(ctx, signer.TypedDataArgs{From: common.HexToAddress(flags.from), TypedData: typed}, flags.note)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	cmd.AddCommand(txCmd, callCmd, dataCmd, typedCmd)
	return cmd
}

// readTypedData 读取 EIP-712 JSON，path 为 "-" 时读标准输入。
func readTypedData(path string, stdin io.Reader) (apitypes.TypedData, error) {
	var typed apitypes.TypedData
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return typed, err
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return typed, fmt.Errorf("parse typed data: %w", err)
	}
	if typed.PrimaryType == "" {
		return typed, fmt.Errorf("typed data has no primaryType")
	}
	return typed, nil
}

func addTxFlags(cmd *cobra.Command, flags *signFlags) {
	cmd.Flags().StringVar(&flags.value, "value", "", "value in wei")
	cmd.Flags().Uint64Var(&flags.gas, "gas", 21000, "gas limit")
	cmd.Flags().StringVar(&flags.gasPrice, "gas-price", "", "legacy gas price in wei")
	cmd.Flags().StringVar(&flags.maxFee, "max-fee", "", "EIP-1559 max fee per gas in wei")
	cmd.Flags().StringVar(&flags.maxPriority, "max-priority-fee", "", "EIP-1559 priority fee per gas in wei")
	cmd.Flags().Int64Var(&flags.nonce, "nonce", -1, "account nonce; read from the chain when negative")
	cmd.Flags().Int64Var(&flags.chainID, "chain-id", 0, "chain id; read from the chain when zero")
	cmd.Flags().BoolVar(&flags.broadcast, "broadcast", false, "send the signed transaction through chain.rpc_url")
}

// txArgs 组装与调用内容无关的交易字段，缺失的 nonce/chain id/gas price 从链上补齐。
func (f *signFlags) txArgs(ctx context.Context, b *chain.EthBroadcaster) (signer.TxArgs, error) {
	if !common.IsHexAddress(f.from) {
		return signer.TxArgs{}, fmt.Errorf("--from %q is not an address", f.from)
	}
	args := signer.TxArgs{From: common.HexToAddress(f.from), Gas: hexutil.Uint64(f.gas)}
	var err error
	if args.Value, err = parseWei("--value", f.value); err != nil {
		return signer.TxArgs{}, err
	}
	if args.GasPrice, err = parseWei("--gas-price", f.gasPrice); err != nil {
		return signer.TxArgs{}, err
	}
	if args.MaxFeePerGas, err = parseWei("--max-fee", f.maxFee); err != nil {
		return signer.TxArgs{}, err
	}
	if args.MaxPriorityFeePerGas, err = parseWei("--max-priority-fee", f.maxPriority); err != nil {
		return signer.TxArgs{}, err
	}
	if f.chainID > 0 {
		args.ChainID = (*hexutil.Big)(big.NewInt(f.chainID))
	}
	if f.nonce >= 0 {
		args.Nonce = hexutil.Uint64(f.nonce)
	}

	needsChain := f.chainID <= 0 || f.nonce < 0 || (args.GasPrice == nil && args.MaxFeePerGas == nil)
	if !needsChain {
		return args, nil
	}
	if b == nil {
		return signer.TxArgs{}, errors.New("chain.rpc_url is not configured; pass --chain-id, --nonce and a gas price")
	}
	defaults, err := b.Defaults(ctx, args.From)
	if err != nil {
		return signer.TxArgs{}, err
	}
	if args.ChainID == nil {
		args.ChainID = (*hexutil.Big)(defaults.ChainID)
	}
	if f.nonce < 0 {
		args.Nonce = hexutil.Uint64(defaults.Nonce)
	}
	if args.GasPrice == nil && args.MaxFeePerGas == nil {
		args.GasPrice = (*hexutil.Big)(defaults.GasPrice)
	}
	return args, nil
}

func withClient(ctx context.Context, opts *rootOptions, flags *signFlags, fn func(context.Context, *appclient.Client, *chain.EthBroadcaster) error) error {
	clientOpts := appclient.Options{Logger: opts.logger}
	if opts.cfg.Signer.TLS.Enabled() {
		tlsCfg, err := opts.cfg.Signer.TLS.ClientTLS()
		if err != nil {
			return err
		}
		clientOpts.TLS = tlsCfg
	}
	var broadcaster *chain.EthBroadcaster
	if opts.cfg.Chain.RPCURL != "" {
		b, err := chain.Dial(ctx, opts.cfg.Chain.RPCURL)
		if err != nil {
			return err
		}
		defer b.Close()
		broadcaster = b
		clientOpts.Broadcaster = b
	} else if flags.broadcast {
		return errors.New("--broadcast requires chain.rpc_url")
	}

	var (
		c   *appclient.Client
		err error
	)
	if flags.endpoint != "" {
		c, err = appclient.Dial(ctx, flags.endpoint, clientOpts)
	} else {
		c, err = appclient.Discover(ctx, opts.cfg.Discovery.NewClient(opts.logger), discovery.ProtocolVersion, clientOpts)
	}
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c, broadcaster)
}

func submitTx(ctx context.Context, out io.Writer, c *appclient.Client, args signer.TxArgs, flags *signFlags) error {
	var (
		res *appclient.Result
		err error
	)
	if flags.broadcast {
		res, err = c.SignAndBroadcast(ctx, args, flags.note)
	} else {
		res, err = c.SignTransaction(ctx, args, flags.note)
	}
	if res != nil {
		printResult(out, res)
	}
	return err
}

func printResult(out io.Writer, res *appclient.Result) {
	fmt.Fprintf(out, "correlation_id: %s\n", res.CorrelationID)
	fmt.Fprintf(out, "account:        %s\n", res.Account.Hex())
	fmt.Fprintf(out, "signature:      %s\n", hexutil.Encode(res.Signature))
	if len(res.SignedTx) > 0 {
		fmt.Fprintf(out, "signed_tx:      %s\n", hexutil.Encode(res.SignedTx))
		fmt.Fprintf(out, "tx_hash:        %s\n", res.TxHash.Hex())
	}
}

func parseWei(flag, s string) (*hexutil.Big, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%s: invalid amount %q", flag, s)
	}
	return (*hexutil.Big)(v), nil
}

func decodeHexFlag(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hexutil.Decode(s)
}
