package indexer

import (
	"context"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"log/slog"
)

const DefaultWorkers = 4

// Harvested is a transaction tagged with the block it was found in.
type Harvested struct {
	Tx         core.Transaction
	BlockSeqno uint32
	Workchain  int32
}

// Harvester collects the transactions of a block and, for masterchain blocks,
// of every shard block listed in its shard configuration.
type Harvester struct {
	blockchain blockchain
	workers    int
	metrics    *metrics.Metrics
}

func NewHarvester(blockchain blockchain, workers int, m *metrics.Metrics) *Harvester {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Harvester{blockchain: blockchain, workers: workers, metrics: m}
}

type shardTarget struct {
	workchain int32
	id        core.BlockIDExt
}

// Harvest returns the block's own transactions first and then the shard ones in
// shard table order. Shard blocks that can not be fetched are skipped, only
// cancellation of ctx fails the harvest.
func (h *Harvester) Harvest(ctx context.Context, block core.Block, workchain int32) ([]Harvested, error) {
	res := collect(block, block.ID.Seqno, workchain)

	var targets []shardTarget
	for _, hashes := range block.ShardHashes {
		for _, descr := range hashes.Shards {
			targets = append(targets, shardTarget{workchain: hashes.Workchain, id: descr.BlockID(hashes.Workchain)})
		}
	}
	if len(targets) == 0 {
		h.metrics.AddHarvested(len(res), 0)
		return res, nil
	}

	slots := make([][]Harvested, len(targets))
	skipped := make([]bool, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, target := range targets {
		g.Go(func() error {
			shardBlock, err := h.blockchain.GetBlock(gCtx, target.id)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Warn("skip shard block", "block", target.id.BlockID.String(), "error", err)
				skipped[i] = true
				return nil
			}
			slots[i] = collect(shardBlock, target.id.Seqno, target.workchain)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	skippedCount := 0
	for i, slot := range slots {
		if skipped[i] {
			skippedCount++
		}
		res = append(res, slot...)
	}
	h.metrics.AddHarvested(len(res), skippedCount)
	return res, nil
}

func collect(block core.Block, seqno uint32, workchain int32) []Harvested {
	res := make([]Harvested, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		res = append(res, Harvested{Tx: tx, BlockSeqno: seqno, Workchain: workchain})
	}
	return res
}
