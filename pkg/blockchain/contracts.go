package blockchain

import (
	"context"
	"fmt"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/content"
	"github.com/txsociety/tonkit/pkg/core"
	"math/big"
)

type NftItem struct {
	Address     core.Address    `json:"address"`
	Initialized bool            `json:"initialized"`
	Index       *big.Int        `json:"index"`
	Collection  *core.Address   `json:"collection,omitempty"`
	Owner       *core.Address   `json:"owner,omitempty"`
	Content     content.Content `json:"content"`
}

type CollectionData struct {
	Address       core.Address    `json:"address"`
	NextItemIndex *big.Int        `json:"next_item_index"`
	Content       content.Content `json:"content"`
	Owner         *core.Address   `json:"owner,omitempty"`
}

func expectDepth(stack Stack, method string, depth int) error {
	if len(stack) != depth {
		return fmt.Errorf("%w: %v returned %d values, expected %d", core.ErrInvalidResponseShape, method, len(stack), depth)
	}
	return nil
}

// GetNftData reads get_nft_data. Content is the individual content as stored by the item.
func (c *Caller) GetNftData(ctx context.Context, item core.Address, block *core.BlockIDExt) (NftItem, error) {
	const method = "get_nft_data"
	stack, err := c.Call(ctx, item, method, nil, block)
	if err != nil {
		return NftItem{}, err
	}
	if err := expectDepth(stack, method, 5); err != nil {
		return NftItem{}, err
	}
	res := NftItem{Address: item}
	if res.Initialized, err = stack.Bool(0); err != nil {
		return NftItem{}, err
	}
	if res.Index, err = stack.Int(1); err != nil {
		return NftItem{}, err
	}
	if res.Collection, err = stack.Address(2); err != nil {
		return NftItem{}, err
	}
	if res.Owner, err = stack.Address(3); err != nil {
		return NftItem{}, err
	}
	// uninitialized items keep null content
	if stack[4].Kind != StackNull {
		individual, err := stack.Cell(4)
		if err != nil {
			return NftItem{}, err
		}
		res.Content = content.Decode(individual)
	}
	return res, nil
}

// GetNftItem reads the item and resolves its full content through the collection.
func (c *Caller) GetNftItem(ctx context.Context, item core.Address, block *core.BlockIDExt) (NftItem, error) {
	res, err := c.GetNftData(ctx, item, block)
	if err != nil {
		return NftItem{}, err
	}
	if res.Collection == nil || res.Content.Raw == nil {
		return res, nil
	}
	full, err := c.GetNftContent(ctx, *res.Collection, res.Index, res.Content.Raw, block)
	if err != nil {
		return NftItem{}, err
	}
	res.Content = full
	return res, nil
}

func (c *Caller) GetCollectionData(ctx context.Context, collection core.Address, block *core.BlockIDExt) (CollectionData, error) {
	const method = "get_collection_data"
	stack, err := c.Call(ctx, collection, method, nil, block)
	if err != nil {
		return CollectionData{}, err
	}
	if err := expectDepth(stack, method, 3); err != nil {
		return CollectionData{}, err
	}
	res := CollectionData{Address: collection}
	if res.NextItemIndex, err = stack.Int(0); err != nil {
		return CollectionData{}, err
	}
	raw, err := stack.Cell(1)
	if err != nil {
		return CollectionData{}, err
	}
	res.Content = content.Decode(raw)
	if res.Owner, err = stack.Address(2); err != nil {
		return CollectionData{}, err
	}
	return res, nil
}

func (c *Caller) GetNftAddressByIndex(ctx context.Context, collection core.Address, index *big.Int, block *core.BlockIDExt) (core.Address, error) {
	const method = "get_nft_address_by_index"
	stack, err := c.Call(ctx, collection, method, Stack{BigIntValue(index)}, block)
	if err != nil {
		return core.Address{}, err
	}
	if err := expectDepth(stack, method, 1); err != nil {
		return core.Address{}, err
	}
	addr, err := stack.Address(0)
	if err != nil {
		return core.Address{}, err
	}
	if addr == nil {
		return core.Address{}, fmt.Errorf("%w: %v returned addr_none", core.ErrInvalidResponseShape, method)
	}
	return *addr, nil
}

// GetNftContent asks the collection to combine its common content with the item's individual content.
func (c *Caller) GetNftContent(ctx context.Context, collection core.Address, index *big.Int, individual *cell.Cell, block *core.BlockIDExt) (content.Content, error) {
	const method = "get_nft_content"
	stack, err := c.Call(ctx, collection, method, Stack{BigIntValue(index), CellValue(individual)}, block)
	if err != nil {
		return content.Content{}, err
	}
	if err := expectDepth(stack, method, 1); err != nil {
		return content.Content{}, err
	}
	full, err := stack.Cell(0)
	if err != nil {
		return content.Content{}, err
	}
	return content.Decode(full), nil
}

// GetSeqno reads the wallet seqno.
func (c *Caller) GetSeqno(ctx context.Context, wallet core.Address) (uint32, error) {
	const method = "seqno"
	stack, err := c.Call(ctx, wallet, method, nil, nil)
	if err != nil {
		return 0, err
	}
	if err := expectDepth(stack, method, 1); err != nil {
		return 0, err
	}
	v, err := stack.Int(0)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || !v.IsUint64() || v.Uint64() > 0xFFFFFFFF {
		return 0, fmt.Errorf("%w: seqno %v out of range", core.ErrInvalidResponseShape, v)
	}
	return uint32(v.Uint64()), nil
}
