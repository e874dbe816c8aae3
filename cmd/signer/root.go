package main

import (
	"fmt"
	"log/slog"

	"github.com/aegis-sign/jadesigner/internal/config"
	"github.com/spf13/cobra"
)

// version 在构建时通过 -ldflags 注入。
var version = "dev"

// rootOptions 保存所有子命令共享的全局参数。
type rootOptions struct {
	configPath string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "jadesigner",
		Short:         "Transaction signer that asks a separate UI for approval",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(opts.logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newAccountCommand(opts))
	cmd.AddCommand(newSignCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build and protocol version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jadesigner %s (protocol %s)\n", version, protocolVersion())
		},
	})
	return cmd
}
