package core

import (
	"fmt"
	"github.com/tonkeeper/tongo/ton"
)

const (
	MasterchainID    int32  = -1
	MasterchainShard uint64 = 0x8000000000000000
)

type BlockID struct {
	Workchain int32
	Shard     uint64
	Seqno     uint32
}

type BlockIDExt struct {
	BlockID
	RootHash ton.Bits256
	FileHash ton.Bits256
}

func (id BlockID) String() string {
	return fmt.Sprintf("(%d,%016x,%d)", id.Workchain, id.Shard, id.Seqno)
}

// ShardDescr is an entry of the masterchain shard configuration.
type ShardDescr struct {
	Seqno              uint32
	NextValidatorShard uint64
	RootHash           ton.Bits256
	FileHash           ton.Bits256
}

func (d ShardDescr) BlockID(workchain int32) BlockIDExt {
	return BlockIDExt{
		BlockID:  BlockID{Workchain: workchain, Shard: d.NextValidatorShard, Seqno: d.Seqno},
		RootHash: d.RootHash,
		FileHash: d.FileHash,
	}
}

type ShardHashes struct {
	Workchain int32
	Shards    []ShardDescr
}

// Block holds the transactions of all account blocks in block order.
// ShardHashes is set for masterchain blocks only and keeps the table order.
type Block struct {
	ID           BlockIDExt
	Transactions []Transaction
	ShardHashes  []ShardHashes
}
