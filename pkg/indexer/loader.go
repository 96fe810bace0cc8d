package indexer

import (
	"context"
	"fmt"
	"github.com/txsociety/tonkit/pkg/classifier"
	"github.com/txsociety/tonkit/pkg/core"
)

// LoadBlock resolves a block by workchain and seqno. Only the root shard is looked up.
func (h *Harvester) LoadBlock(ctx context.Context, workchain int32, seqno uint32) (core.Block, error) {
	id, err := h.blockchain.LookupBlock(ctx, core.BlockID{Workchain: workchain, Shard: core.MasterchainShard, Seqno: seqno})
	if err != nil {
		return core.Block{}, fmt.Errorf("can not find block %d:%d: %w", workchain, seqno, err)
	}
	block, err := h.blockchain.GetBlock(ctx, id)
	if err != nil {
		return core.Block{}, fmt.Errorf("can not get block %v: %w", id.BlockID, err)
	}
	return block, nil
}

// LoadBlockTransactions harvests and classifies every transaction reachable from the block.
func (h *Harvester) LoadBlockTransactions(ctx context.Context, workchain int32, seqno uint32) ([]core.TxRecord, error) {
	block, err := h.LoadBlock(ctx, workchain, seqno)
	if err != nil {
		return nil, err
	}
	harvested, err := h.Harvest(ctx, block, workchain)
	if err != nil {
		return nil, err
	}
	return classifyAll(harvested), nil
}

func classifyAll(harvested []Harvested) []core.TxRecord {
	records := make([]core.TxRecord, 0, len(harvested))
	for _, item := range harvested {
		records = append(records, classifier.Classify(item.Tx, item.BlockSeqno, item.Workchain))
	}
	return records
}
