package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aegis-sign/jadesigner/internal/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage keystore accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts in the keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ks, err := openKeystore(opts)
			if err != nil {
				return err
			}
			for i, acct := range ks.Accounts() {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s %s\n", i, acct.Address.Hex(), acct.URL.Path)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Create an account protected by a passphrase read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ks, err := openKeystore(opts)
			if err != nil {
				return err
			}
			lines := bufio.NewReader(cmd.InOrStdin())
			pass, err := readPassphrase(lines, cmd.ErrOrStderr(), "passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase(lines, cmd.ErrOrStderr(), "repeat passphrase: ")
			if err != nil {
				return err
			}
			if pass != confirm {
				return errors.New("passphrases do not match")
			}
			acct, err := ks.NewAccount(pass)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acct.Address.Hex())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <keyfile>",
		Short: "Import an encrypted key file, re-encrypting it with a new passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := openKeystore(opts)
			if err != nil {
				return err
			}
			keyJSON, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			lines := bufio.NewReader(cmd.InOrStdin())
			current, err := readPassphrase(lines, cmd.ErrOrStderr(), "current passphrase: ")
			if err != nil {
				return err
			}
			next, err := readPassphrase(lines, cmd.ErrOrStderr(), "new passphrase: ")
			if err != nil {
				return err
			}
			acct, err := ks.Import(keyJSON, current, next)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acct.Address.Hex())
			return nil
		},
	})
	var exportOut string
	exportCmd := &cobra.Command{
		Use:   "export <address>",
		Short: "Export a key file re-encrypted with a new passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAccount(args[0])
			if err != nil {
				return err
			}
			ks, err := openKeystore(opts)
			if err != nil {
				return err
			}
			lines := bufio.NewReader(cmd.InOrStdin())
			current, err := readPassphrase(lines, cmd.ErrOrStderr(), "current passphrase: ")
			if err != nil {
				return err
			}
			next, err := readPassphrase(lines, cmd.ErrOrStderr(), "export passphrase: ")
			if err != nil {
				return err
			}
			keyJSON, err := ks.Export(addr, current, next)
			if err != nil {
				return err
			}
			if exportOut == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(keyJSON))
				return err
			}
			return os.WriteFile(exportOut, keyJSON, 0o600)
		},
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write the key file here instead of stdout")
	cmd.AddCommand(exportCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "passwd <address>",
		Short: "Change the passphrase protecting an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAccount(args[0])
			if err != nil {
				return err
			}
			ks, err := openKeystore(opts)
			if err != nil {
				return err
			}
			lines := bufio.NewReader(cmd.InOrStdin())
			current, err := readPassphrase(lines, cmd.ErrOrStderr(), "current passphrase: ")
			if err != nil {
				return err
			}
			next, err := readPassphrase(lines, cmd.ErrOrStderr(), "new passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase(lines, cmd.ErrOrStderr(), "repeat new passphrase: ")
			if err != nil {
				return err
			}
			if next != confirm {
				return errors.New("passphrases do not match")
			}
			if err := ks.Update(addr, current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())
			return nil
		},
	})
	return cmd
}

func parseAccount(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid account address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func openKeystore(opts *rootOptions) (*keystore.Store, error) {
	return keystore.Open(opts.cfg.Keystore.Dir, opts.cfg.Keystore.Light, keystore.WithLogger(opts.logger))
}

func readPassphrase(r *bufio.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("passphrase must not be empty")
	}
	return line, nil
}
