package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/defistate/v3swap/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "v3quote",
		Short:        "Quote swaps against a Uniswap V3 pool snapshot",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("snapshot", "", "pool snapshot JSON file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Simulate a swap and print the result",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("regime", config.RegimeExact, "arithmetic regime (exact, approx)")
	quoteCmd.Flags().Bool("zero-for-one", true, "sell token0 for token1")
	quoteCmd.Flags().String("amount", "", "amount in whole tokens of the specified asset")
	quoteCmd.Flags().Bool("exact-out", false, "treat the amount as the exact output")
	quoteCmd.Flags().String("price-limit", "", "sqrt price limit as a Q64.96 integer, decimal or 0x hex")
	quoteCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address after quoting, until interrupted")

	root.AddCommand(quoteCmd)

	spotCmd := &cobra.Command{
		Use:   "spot",
		Short: "Print the spot price and virtual reserves of the snapshot",
		RunE:  runSpot,
	}

	root.AddCommand(spotCmd)
	return root
}

// loadConfig reads the merged configuration for cmd and builds the root logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, _ := cfg.Level()
	rootLogHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return cfg, slog.New(rootLogHandler), nil
}

// serveMetrics exposes reg on addr until the process is interrupted.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving metrics", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
