package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aegis-sign/jadesigner/api/signerv1"
	signerapi "github.com/aegis-sign/jadesigner/internal/api"
	"github.com/aegis-sign/jadesigner/internal/config"
	"github.com/aegis-sign/jadesigner/internal/discovery"
	"github.com/aegis-sign/jadesigner/internal/infra/connpool"
	"github.com/aegis-sign/jadesigner/internal/keystore"
	"github.com/aegis-sign/jadesigner/internal/ledger"
	"github.com/aegis-sign/jadesigner/internal/registry"
	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/aegis-sign/jadesigner/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the signer backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg, opts.logger)
		},
	}
}

func protocolVersion() string { return discovery.ProtocolVersion }

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ks, err := keystore.Open(cfg.Keystore.Dir, cfg.Keystore.Light, keystore.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("keystore opened", slog.String("dir", ks.Dir()), slog.Int("accounts", len(ks.Accounts())))

	pool, err := connpool.NewPool(connpool.LoadConfigFromEnv(), connpool.WithLogger(logger), connpool.WithRegisterer(metricsReg))
	if err != nil {
		return err
	}
	defer pool.Close()

	prompter := signer.NewGRPCPrompter(pool, logger)

	store, closeStore, err := newRegistrationStore(ctx, cfg.Registry)
	if err != nil {
		return err
	}
	defer closeStore()
	registrations := registry.New(store, registry.Config{
		TTL:      cfg.Registry.TTL,
		Logger:   logger,
		Metrics:  registry.NewMetrics(metricsReg),
		OnRetire: prompter.Retire,
	})

	var recorder signer.OutcomeRecorder
	if cfg.Ledger.Path != "" {
		led, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer led.Close()
		recorder = led
	}

	backend, err := signer.New(signer.NewKeystoreUnlocker(ks), registrations, prompter, signer.Config{
		RequestTimeout: cfg.Signer.RequestTimeout,
		MaxQueue:       cfg.Signer.MaxQueue,
		AdmissionRate:  cfg.Signer.AdmissionRate,
		AdmissionBurst: cfg.Signer.AdmissionBurst,
		Logger:         logger,
		Metrics:        signer.NewMetrics(metricsReg),
		Recorder:       recorder,
	})
	if err != nil {
		return err
	}
	defer backend.Close()

	tlsCfg, err := cfg.Signer.TLS.ServerTLS()
	if err != nil {
		return err
	}
	grpcSrv := grpc.NewServer(transport.ServerOptions(tlsCfg)...)
	signerv1.RegisterSignerServiceServer(grpcSrv, signerapi.NewGRPCServer(backend, registrations,
		signerapi.WithInsecureCredentials(cfg.Signer.AllowInsecureCredentials),
		signerapi.WithLogger(logger),
	))
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(signerv1.SignerService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	grpcLis, err := transport.ListenString(cfg.Signer.GRPCListen)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	if cfg.Signer.AllowInsecureCredentials {
		logger.Warn("credentials may travel over plaintext tcp; do not use outside tests")
	}

	version, err := discovery.ParseVersion(discovery.ProtocolVersion)
	if err != nil {
		return err
	}
	responder := discovery.NewResponder(cfg.Signer.GRPCListen, version,
		discovery.WithNetworkEndpoint(cfg.Signer.NetworkEndpoint()),
		discovery.WithResponderLogger(logger),
	)

	sweeper := registry.NewSweeper(registry.SweeperConfig{
		Registry: registrations,
		Interval: cfg.Registry.SweepInterval,
		Logger:   logger,
	})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", slog.String("endpoint", cfg.Signer.GRPCListen), slog.String("instance", responder.InstanceID()))
		return grpcSrv.Serve(grpcLis)
	})
	g.Go(func() error {
		<-gctx.Done()
		healthSrv.Shutdown()
		grpcSrv.GracefulStop()
		return nil
	})

	if cfg.Discovery.LocalEndpoint != "" {
		lis, err := transport.ListenString(cfg.Discovery.LocalEndpoint)
		if err != nil {
			grpcSrv.Stop()
			return fmt.Errorf("listen discovery: %w", err)
		}
		g.Go(func() error {
			logger.Info("local discovery listening", slog.String("endpoint", cfg.Discovery.LocalEndpoint))
			return responder.ServeStream(gctx, lis)
		})
	}
	if cfg.Discovery.UDPListen != "" {
		pc, err := net.ListenPacket("udp", cfg.Discovery.UDPListen)
		if err != nil {
			grpcSrv.Stop()
			return fmt.Errorf("listen discovery udp: %w", err)
		}
		g.Go(func() error {
			logger.Info("network discovery listening", slog.String("addr", pc.LocalAddr().String()), slog.String("advertise", responder.NetworkEndpoint()))
			return responder.ServePacket(gctx, pc)
		})
	}

	if cfg.Signer.HTTPListen != "" {
		handler := signerapi.NewHTTPHandler(backend, registrations,
			signerapi.WithAccounts(ks),
			signerapi.WithDebugHandler(backend.DebugHandler()),
			signerapi.WithGatherer(metricsReg),
			signerapi.WithHTTPLogger(logger),
		)
		httpSrv := &http.Server{
			Addr:              cfg.Signer.HTTPListen,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("HTTP server listening", slog.String("addr", httpSrv.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("signer stopped")
	if errors.Is(err, grpc.ErrServerStopped) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// newRegistrationStore 按配置选择内存或 Redis 存储。
func newRegistrationStore(ctx context.Context, cfg config.RegistryConfig) (registry.Store, func(), error) {
	clock := registry.NewRealClock()
	if cfg.Backend != config.RegistryBackendRedis {
		return registry.NewMemoryStore(clock), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return registry.NewRedisStore(client, cfg.RedisKey, clock), func() { _ = client.Close() }, nil
}
