package core

import (
	"github.com/tonkeeper/tongo/ton"
	"github.com/txsociety/tonkit/pkg/cell"
)

type TxID struct {
	Lt   uint64
	Hash ton.Bits256
}

// AccountSnapshot is the state of an account at some masterchain block.
type AccountSnapshot struct {
	Address    Address       `json:"address"`
	Friendly   string        `json:"friendly"`
	Status     AccountStatus `json:"status"`
	Balance    uint64        `json:"balance"`
	Code       *cell.Cell    `json:"code,omitempty"`
	Data       *cell.Cell    `json:"data,omitempty"`
	LastTx     *TxID         `json:"last_tx,omitempty"`
	BlockSeqno uint32        `json:"block_seqno"`
}
