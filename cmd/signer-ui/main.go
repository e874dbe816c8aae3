package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aegis-sign/jadesigner/internal/config"
	"github.com/aegis-sign/jadesigner/internal/discovery"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/aegis-sign/jadesigner/internal/ui"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "jadesigner-ui",
		Short:         "Terminal front-end that approves requests for a jadesigner backend",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// 日志写 stderr，终端提示写 stdout，互不干扰。
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(logger)
			return run(cmd.Context(), cfg, logger, ui.NewConsolePrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	return cmd
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, prompter ui.Prompter) error {
	serverTLS, err := cfg.UI.TLS.ServerTLS()
	if err != nil {
		return err
	}
	clientOpts := transport.ClientOptions{}
	if cfg.Signer.TLS.Enabled() {
		if clientOpts.TLS, err = cfg.Signer.TLS.ClientTLS(); err != nil {
			return err
		}
	}
	agent, err := ui.NewAgent(cfg.Discovery.NewClient(logger), prompter, ui.Config{
		CallbackEndpoint:  cfg.UI.CallbackListen,
		AdvertiseEndpoint: cfg.UI.CallbackAdvertise,
		Version:           discovery.ProtocolVersion,
		PromptTimeout:     cfg.UI.PromptTimeout,
		RenewInterval:     cfg.UI.RenewInterval,
		Backoff:           cfg.UI.Backoff,
		ServerTLS:         serverTLS,
		Client:            clientOpts,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	return agent.Run(ctx)
}
