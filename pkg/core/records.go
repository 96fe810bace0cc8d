package core

import (
	"github.com/tonkeeper/tongo/ton"
	"math/big"
)

type Action string

const (
	TransferAction   Action = "TRANSFER"
	InvocationAction Action = "INVOCATION"
	InitAction       Action = "INIT"
)

type Direction string

const (
	InDirection  Direction = "IN"
	OutDirection Direction = "OUT"
)

type MsgRecord struct {
	Direction   Direction    `json:"direction"`
	Kind        MsgKind      `json:"kind"`
	Action      Action       `json:"action"`
	Source      *Address     `json:"source,omitempty"`
	Destination *Address     `json:"destination,omitempty"`
	Value       uint64       `json:"value"`
	FwdFee      uint64       `json:"fwd_fee"`
	IhrFee      uint64       `json:"ihr_fee"`
	CreatedLt   uint64       `json:"created_lt"`
	Bounced     bool         `json:"bounced"`
	Init        bool         `json:"init"`
	Op          *uint32      `json:"op,omitempty"`
	Comment     *string      `json:"comment,omitempty"`
	Amount      *big.Int     `json:"amount,omitempty"`
	NewOwner    *Address     `json:"new_owner,omitempty"`
	BodyHash    *ton.Bits256 `json:"body_hash,omitempty"`
}

type TxRecord struct {
	Hash             ton.Bits256 `json:"hash"`
	Lt               uint64      `json:"lt"`
	PrevTxHash       ton.Bits256 `json:"prev_tx_hash"`
	PrevTxLt         uint64      `json:"prev_tx_lt"`
	Account          Address     `json:"account"`
	AccountFriendly  string      `json:"account_friendly"`
	Workchain        int32       `json:"workchain"`
	BlockSeqno       uint32      `json:"block_seqno"`
	Utime            uint32      `json:"utime"`
	Init             bool        `json:"init"`
	TotalFees        uint64      `json:"total_fees"`
	StorageFee       *uint64     `json:"storage_fee,omitempty"`
	ComputeFee       *uint64     `json:"compute_fee,omitempty"`
	ActionFwdFee     *uint64     `json:"action_fwd_fee,omitempty"`
	ActionFee        *uint64     `json:"action_fee,omitempty"`
	ComputeSuccess   *bool       `json:"compute_success,omitempty"`
	ComputeExitCode  *int32      `json:"compute_exit_code,omitempty"`
	ActionSuccess    *bool       `json:"action_success,omitempty"`
	ActionResultCode *int32      `json:"action_result_code,omitempty"`
	Aborted          bool        `json:"aborted"`
	InMsg            *MsgRecord  `json:"in_msg,omitempty"`
	OutMsgs          []MsgRecord `json:"out_msgs"`
}
