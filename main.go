package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"tokenchecker/internal/chain"
	"tokenchecker/internal/coingecko"
	"tokenchecker/internal/config"
	"tokenchecker/internal/coordinator"
	"tokenchecker/internal/dexscreener"
	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/jupiter"
	"tokenchecker/internal/metadata"
	"tokenchecker/internal/oracle"
	"tokenchecker/internal/ratelimit"
	"tokenchecker/internal/report"
	"tokenchecker/internal/storage/prefs"
	"tokenchecker/internal/verifier"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("Check failed: %v", err)
	}
}

// run applies the preference actions, verifies every wallet and renders the report.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := prefs.NewStore(cfg.PrefsPath)
	if err != nil {
		return err
	}
	defer store.Close()

	saved, err := store.Load()
	if err != nil {
		return err
	}

	if cfg.ResetRPC {
		if err := store.ResetEndpoint(); err != nil {
			return err
		}
		saved.Endpoint = ""
		slog.Info("saved RPC endpoint reset", "endpoint", chain.DefaultEndpoint)
	}
	endpoint := config.ResolveEndpoint(cfg.RPCEndpoint, saved.Endpoint)
	if cfg.SaveRPC {
		if err := store.SaveEndpoint(endpoint); err != nil {
			return err
		}
		slog.Info("RPC endpoint saved", "endpoint", endpoint)
	}

	wallets, err := cfg.ReadWallets()
	if err != nil {
		return err
	}
	if wallets == "" {
		wallets = saved.Wallets
	}
	if cfg.SaveWallets && wallets != "" {
		if err := store.SaveWallets(wallets); err != nil {
			return err
		}
		slog.Info("wallet list saved", "wallets", len(model.ParseAddressList(wallets)))
	}

	if strings.TrimSpace(wallets) == "" {
		if cfg.SaveRPC || cfg.ResetRPC {
			return nil
		}
		return fmt.Errorf("no wallets to check: set WALLETS, WALLETS_FILE or save a wallet list")
	}

	coord := newCoordinator(cfg)
	defer coord.Close()

	rep := report.New(out, cfg.Output)

	results, err := coord.Run(ctx, coordinator.RunConfig{
		Endpoint:    endpoint,
		Mode:        cfg.Mode(),
		AddressText: wallets,
	})
	if err != nil {
		return err
	}

	total := len(model.ParseAddressList(wallets))
	done := 0
	for res := range results {
		done++
		rep.Progress(done, total, res)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if cfg.RetryFailed {
		for _, wallet := range coord.FailedWallets() {
			res, err := coord.Retry(ctx, wallet)
			if err != nil {
				return fmt.Errorf("retrying %s: %w", wallet, err)
			}
			rep.Retried(res)
		}
	}

	return rep.Render(
		coord.Filter(cfg.MinValue, cfg.FilterUnit()),
		coord.Stats(),
		report.NewFilter(cfg.MinValue, cfg.FilterUnit()),
	)
}

// newCoordinator wires the upstream clients, shared rate limiter and verifier.
func newCoordinator(cfg *config.Config) *coordinator.Coordinator {
	limiter := ratelimit.New(ratelimit.Rates{
		ratelimit.APIRPC:         cfg.RPCRPS,
		ratelimit.APIDexScreener: cfg.DexScreenerRPS,
		ratelimit.APIJupiter:     cfg.JupiterRPS,
		ratelimit.APICoinGecko:   cfg.CoinGeckoRPS,
	})

	resolver := metadata.NewResolver(
		dexscreener.NewClient(cfg.DexScreenerBaseURL, cfg.HTTPRetries, limiter),
		jupiter.NewClient(cfg.JupiterBaseURL, cfg.HTTPRetries, limiter),
	)
	priceOracle := oracle.New(
		coingecko.NewClient(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey, cfg.HTTPRetries, limiter),
	)

	commitment := rpc.CommitmentType(cfg.Commitment)
	connect := func(endpoint string) (verifier.BalanceFetcher, error) {
		return chain.NewClient(endpoint, commitment, limiter), nil
	}

	return coordinator.New(verifier.New(resolver, priceOracle), connect)
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return srv
}
