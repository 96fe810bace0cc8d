package indexer

import (
	"context"
	"github.com/txsociety/tonkit/pkg/core"
)

type blockchain interface {
	MasterchainHead(ctx context.Context) (core.BlockIDExt, error)
	LookupBlock(ctx context.Context, id core.BlockID) (core.BlockIDExt, error)
	GetBlock(ctx context.Context, id core.BlockIDExt) (core.Block, error)
}

type sink interface {
	Send(ctx context.Context, record core.TxRecord) error
}
