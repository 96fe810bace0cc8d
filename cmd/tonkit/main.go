package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/txsociety/tonkit/internal/config"
	"github.com/txsociety/tonkit/pkg/api"
	"github.com/txsociety/tonkit/pkg/blockchain"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/indexer"
	"github.com/txsociety/tonkit/pkg/metrics"
	"github.com/txsociety/tonkit/pkg/retry"
	"github.com/txsociety/tonkit/pkg/wallet"
	"github.com/txsociety/tonkit/pkg/webhook"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var Version = "dev"

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))
	slog.Info("running tonkit", "version", Version, "log level", cfg.LogLevel.String())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	wg := new(sync.WaitGroup)
	ctx, cancel := context.WithCancel(context.Background())

	m := metrics.NewMetrics(cfg.MetricsNS, prometheus.DefaultRegisterer)

	servers := cfg.LiteServers
	if len(servers) > 1 && cfg.MaxLatency > 0 {
		servers = blockchain.SelectLiteServers(ctx, servers, cfg.MaxLatency)
	}
	bcClient, err := blockchain.New(servers)
	if err != nil {
		slog.Error("blockchain connection", "error", err)
		os.Exit(1)
	}
	bcClient.RunBlockWatcher(ctx, wg)

	policy := retry.DefaultPolicy()
	policy.Attempts = cfg.RetryAttempts
	policy.Delay = cfg.RetryDelay
	caller := blockchain.NewCaller(bcClient, policy, m)
	harvester := indexer.NewHarvester(bcClient, cfg.Indexer.Workers, m)

	var w *wallet.Wallet
	if cfg.Wallet.Configured() {
		w, err = newWallet(cfg.Wallet, caller, bcClient)
		if err != nil {
			slog.Error("wallet creation", "error", err)
			os.Exit(1)
		}
		slog.Info("wallet loaded", "address", w.Address().ToHuman(true, false), "version", w.Variant().String())
	}

	if cfg.Indexer.Enabled {
		var sink interface {
			Send(ctx context.Context, record core.TxRecord) error
		} = indexer.LogSink{}
		if len(cfg.WebhookEndpoint) > 0 {
			sink, err = webhook.NewClient(cfg.WebhookEndpoint)
			if err != nil {
				slog.Error("webhook connection", "error", err)
				os.Exit(1)
			}
		}
		indexerProc := indexer.New(bcClient, harvester, sink, cfg.Indexer.PollInterval, m)
		accountsChan := indexerProc.Run(ctx, wg)

		ctx1, cancel1 := context.WithTimeout(ctx, 60*time.Second)
		accounts, err := getAccountsForTracking(ctx1, bcClient, cfg.Indexer.Accounts, cfg.Indexer.Jettons)
		cancel1()
		if err != nil {
			slog.Error("get accounts for tracking", "error", err)
			os.Exit(1)
		}
		for _, acc := range accounts {
			accountsChan <- acc
		}
	} else if len(cfg.WebhookEndpoint) > 0 {
		slog.Warn("webhook endpoint is set but the indexer is disabled")
	}

	mux := http.NewServeMux()
	var handler *api.Handler
	if w != nil {
		handler = api.NewHandler(bcClient, caller, harvester, w)
	} else {
		handler = api.NewHandler(bcClient, caller, harvester, nil)
	}
	api.RegisterHandlers(mux, handler, cfg.Token)
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", cfg.Port),
		Handler: mux,
	}
	go func() {
		slog.Info("running api server", "port", cfg.Port)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-ch
	slog.Info("shut down", "signal", sig.String())
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	slog.Info("api stopped")
	cancel()
	wg.Wait()
}

func newWallet(cfg config.Wallet, caller *blockchain.Caller, bcClient *blockchain.Client) (*wallet.Wallet, error) {
	if len(cfg.Seed) > 0 {
		return wallet.FromSeed(cfg.Seed, cfg.Version, cfg.Workchain, cfg.SubWallet(), caller, bcClient)
	}
	key, err := wallet.KeyFromSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}
	signer, err := wallet.NewKeySigner(key)
	if err != nil {
		return nil, err
	}
	return wallet.New(cfg.Version, signer, cfg.Workchain, cfg.SubWallet(), caller, bcClient)
}
