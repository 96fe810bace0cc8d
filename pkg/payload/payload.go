package payload

import (
	"fmt"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"math/big"
	"unicode/utf8"
)

// Comment builds a text comment body: a zero op followed by the snake encoded text.
func Comment(text string) (*cell.Cell, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: comment is not valid utf-8", core.ErrValidation)
	}
	return cell.NewBuilder().
		StoreUint(uint64(core.OpComment), 32).
		StoreStringSnake(text).
		EndCell()
}

func storeForwardPayload(b *cell.Builder, forward *cell.Cell) *cell.Builder {
	if forward == nil {
		return b.StoreBit(false)
	}
	return b.StoreBit(true).StoreRef(forward)
}

// NftTransfer asks an NFT item to change its owner.
func NftTransfer(queryID uint64, newOwner core.Address, responseDest *core.Address, forwardAmount uint64, forward *cell.Cell) (*cell.Cell, error) {
	b := cell.NewBuilder().
		StoreUint(uint64(core.OpNftTransfer), 32).
		StoreUint(queryID, 64)
	core.StoreAddress(b, &newOwner)
	core.StoreAddress(b, responseDest).
		StoreBit(false). // custom payload
		StoreGrams(forwardAmount)
	return storeForwardPayload(b, forward).EndCell()
}

// JettonTransfer is sent by the owner to its jetton wallet.
func JettonTransfer(queryID uint64, amount *big.Int, destination core.Address, responseDest *core.Address, forwardAmount uint64, forward *cell.Cell) (*cell.Cell, error) {
	b := cell.NewBuilder().
		StoreUint(uint64(core.OpJettonTransfer), 32).
		StoreUint(queryID, 64).
		StoreCoins(amount)
	core.StoreAddress(b, &destination)
	core.StoreAddress(b, responseDest).
		StoreBit(false).
		StoreGrams(forwardAmount)
	return storeForwardPayload(b, forward).EndCell()
}

// JettonInternalTransfer is the message one jetton wallet sends to another.
func JettonInternalTransfer(queryID uint64, amount *big.Int, from core.Address, responseDest *core.Address, forwardAmount uint64, forward *cell.Cell) (*cell.Cell, error) {
	b := cell.NewBuilder().
		StoreUint(uint64(core.OpJettonInternalTransfer), 32).
		StoreUint(queryID, 64).
		StoreCoins(amount)
	core.StoreAddress(b, &from)
	core.StoreAddress(b, responseDest).
		StoreGrams(forwardAmount)
	return storeForwardPayload(b, forward).EndCell()
}

func TransferNotification(queryID uint64, amount *big.Int, sender core.Address, forward *cell.Cell) (*cell.Cell, error) {
	b := cell.NewBuilder().
		StoreUint(uint64(core.OpJettonTransferNotification), 32).
		StoreUint(queryID, 64).
		StoreCoins(amount)
	core.StoreAddress(b, &sender)
	return storeForwardPayload(b, forward).EndCell()
}
