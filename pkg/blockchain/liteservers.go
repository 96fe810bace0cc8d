package blockchain

import (
	"context"
	"github.com/tonkeeper/tongo/config"
	"github.com/tonkeeper/tongo/liteapi"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"time"
)

const (
	DefaultMaxLatency = 350 * time.Millisecond
	probeTimeout      = 10 * time.Second
)

type latencyFunc func(ctx context.Context, server config.LiteServer) (time.Duration, error)

// SelectLiteServers keeps the servers that return the last masterchain block within maxLatency.
// The full list is returned when no server qualifies.
func SelectLiteServers(ctx context.Context, servers []config.LiteServer, maxLatency time.Duration) []config.LiteServer {
	return selectLiteServers(ctx, servers, maxLatency, blockLatency)
}

func selectLiteServers(ctx context.Context, servers []config.LiteServer, maxLatency time.Duration, measure latencyFunc) []config.LiteServer {
	latencies := make([]time.Duration, len(servers))
	failed := make([]bool, len(servers))
	g := new(errgroup.Group)
	for i, server := range servers {
		g.Go(func() error {
			d, err := measure(ctx, server)
			if err != nil {
				slog.Warn("lite server check failed", "host", server.Host, "error", err)
				failed[i] = true
				return nil
			}
			slog.Info("lite server checked", "host", server.Host, "latency", d.String())
			latencies[i] = d
			return nil
		})
	}
	_ = g.Wait()

	res := make([]config.LiteServer, 0, len(servers))
	for i, server := range servers {
		if !failed[i] && latencies[i] < maxLatency {
			res = append(res, server)
		}
	}
	slog.Info("lite servers selected", "selected", len(res), "total", len(servers))
	if len(res) == 0 {
		return servers
	}
	return res
}

func blockLatency(ctx context.Context, server config.LiteServer) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	api, err := liteapi.NewClient(
		liteapi.WithLiteServers([]config.LiteServer{server}),
		liteapi.WithInitializationContext(ctx),
		liteapi.WithTimeout(probeTimeout),
	)
	if err != nil {
		return 0, err
	}
	info, err := api.GetMasterchainInfo(ctx)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	_, err = api.GetBlock(ctx, info.Last.ToBlockIdExt())
	if err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
