package api

import (
	"context"
	"github.com/txsociety/tonkit/pkg/blockchain"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/wallet"
	"math/big"
)

type node interface {
	GetAccountState(ctx context.Context, addr core.Address, block *core.BlockIDExt) (core.AccountSnapshot, error)
	GetJettonWallet(ctx context.Context, jettonMaster, owner core.Address) (core.Address, error)
}

type contracts interface {
	GetNftItem(ctx context.Context, item core.Address, block *core.BlockIDExt) (blockchain.NftItem, error)
	GetCollectionData(ctx context.Context, collection core.Address, block *core.BlockIDExt) (blockchain.CollectionData, error)
	GetNftAddressByIndex(ctx context.Context, collection core.Address, index *big.Int, block *core.BlockIDExt) (core.Address, error)
}

type transactions interface {
	LoadBlockTransactions(ctx context.Context, workchain int32, seqno uint32) ([]core.TxRecord, error)
}

type sender interface {
	Address() core.Address
	Transfer(ctx context.Context, transfers []core.WalletTransfer, opts ...wallet.Option) (*wallet.Transfer, error)
}
