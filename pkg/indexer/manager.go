package indexer

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/metrics"
	"log/slog"
	"sync"
	"time"
)

const DefaultPollInterval = 5 * time.Second

// Indexer follows the masterchain and hands classified transactions to a sink.
// With no tracked accounts every transaction is delivered.
type Indexer struct {
	blockchain   blockchain
	harvester    *Harvester
	sink         sink
	metrics      *metrics.Metrics
	pollInterval time.Duration
	accounts     chan core.Address

	mu        sync.RWMutex
	tracked   map[core.Address]struct{}
	lastSeqno uint32
}

func New(blockchain blockchain, harvester *Harvester, sink sink, pollInterval time.Duration, m *metrics.Metrics) *Indexer {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Indexer{
		blockchain:   blockchain,
		harvester:    harvester,
		sink:         sink,
		metrics:      m,
		pollInterval: pollInterval,
		accounts:     make(chan core.Address),
		tracked:      make(map[core.Address]struct{}),
	}
}

// Run starts the indexer loop. Addresses sent to the returned channel narrow delivery to those accounts.
func (i *Indexer) Run(ctx context.Context, wg *sync.WaitGroup) chan<- core.Address {
	wg.Add(1)
	go i.runIndexer(ctx, wg)
	return i.accounts
}

func (i *Indexer) runIndexer(ctx context.Context, wg *sync.WaitGroup) {
	slog.Info("indexer started")
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			slog.Info("indexer stopped")
			return
		case acc := <-i.accounts:
			i.track(acc)
			slog.Info("account tracked", "address", acc.ToRaw())
		case <-time.After(i.pollInterval):
			err := i.processNewBlocks(ctx)
			if err != nil && ctx.Err() == nil {
				slog.Error("failed to process blocks", "error", err)
			}
		}
	}
}

func (i *Indexer) track(a core.Address) {
	i.mu.Lock()
	i.tracked[a] = struct{}{}
	i.mu.Unlock()
}

func (i *Indexer) isTracked(a core.Address) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if len(i.tracked) == 0 {
		return true
	}
	_, ok := i.tracked[a]
	return ok
}

func (i *Indexer) LastSeqno() uint32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.lastSeqno
}

func (i *Indexer) setLastSeqno(seqno uint32) {
	i.mu.Lock()
	i.lastSeqno = seqno
	i.mu.Unlock()
	i.metrics.SetProcessedBlock(seqno)
}

// processNewBlocks harvests every masterchain block after the last processed one up to the head.
// The first call starts from the head itself.
func (i *Indexer) processNewBlocks(ctx context.Context) error {
	ctx1, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	head, err := i.blockchain.MasterchainHead(ctx1)
	if err != nil {
		return err
	}
	last := i.LastSeqno()
	if last == 0 {
		last = head.Seqno - 1
	}
	for seqno := last + 1; seqno <= head.Seqno; seqno++ {
		if err := i.processBlock(ctx1, seqno); err != nil {
			return fmt.Errorf("block %d: %w", seqno, err)
		}
		i.setLastSeqno(seqno)
	}
	return nil
}

func (i *Indexer) processBlock(ctx context.Context, seqno uint32) error {
	runID, err := uuid.NewV7()
	if err != nil {
		return err
	}
	block, err := i.harvester.LoadBlock(ctx, core.MasterchainID, seqno)
	if err != nil {
		return err
	}
	harvested, err := i.harvester.Harvest(ctx, block, core.MasterchainID)
	if err != nil {
		return err
	}
	delivered := 0
	for _, record := range classifyAll(harvested) {
		if !i.isTracked(record.Account) {
			continue
		}
		if err := i.sink.Send(ctx, record); err != nil {
			slog.Error("failed to deliver record", "run", runID.String(), "hash", record.Hash.Hex(), "error", err)
			continue
		}
		delivered++
	}
	i.metrics.AddDelivered(delivered)
	slog.Debug("masterchain block processed", "run", runID.String(), "seqno", seqno, "transactions", len(harvested), "delivered", delivered)
	return nil
}

// LogSink writes records to the default logger.
type LogSink struct{}

func (LogSink) Send(_ context.Context, record core.TxRecord) error {
	slog.Info("transaction",
		"account", record.AccountFriendly,
		"lt", record.Lt,
		"hash", record.Hash.Hex(),
		"workchain", record.Workchain,
		"block", record.BlockSeqno)
	return nil
}
