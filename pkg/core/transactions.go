package core

import (
	"github.com/tonkeeper/tongo/ton"
	"github.com/txsociety/tonkit/pkg/cell"
)

type AccountStatus string

const (
	AccountUninit   AccountStatus = "uninit"
	AccountFrozen   AccountStatus = "frozen"
	AccountActive   AccountStatus = "active"
	AccountNonexist AccountStatus = "nonexist"
)

type MsgKind string

const (
	IntMsg    MsgKind = "int"
	ExtInMsg  MsgKind = "ext_in"
	ExtOutMsg MsgKind = "ext_out"
)

type Transaction struct {
	Account     Address
	Lt          uint64
	Hash        ton.Bits256
	PrevTxLt    uint64
	PrevTxHash  ton.Bits256
	Utime       uint32
	OrigStatus  AccountStatus
	EndStatus   AccountStatus
	TotalFees   uint64
	InMessage   *Message
	OutMessages []Message
	Description *TxDescription
}

// TxDescription carries the phases of an ordinary transaction.
type TxDescription struct {
	Storage *StoragePhase
	Compute *ComputePhase
	Action  *ActionPhase
	Aborted bool
}

type StoragePhase struct {
	FeesCollected uint64
}

type ComputePhase struct {
	Skipped  bool
	Success  bool
	GasFees  uint64
	ExitCode int32
}

type ActionPhase struct {
	Success         bool
	ResultCode      int32
	TotalFwdFees    *uint64
	TotalActionFees *uint64
}

type Message struct {
	Kind        MsgKind
	Source      *Address
	Destination *Address
	Value       uint64
	FwdFee      uint64
	IhrFee      uint64
	Bounce      bool
	Bounced     bool
	Lt          uint64
	CreatedAt   uint32
	Init        *StateInit
	Body        *cell.Cell
}

func (m Message) HasBody() bool {
	return m.Body != nil && !m.Body.IsEmpty()
}

type StateInit struct {
	Code *cell.Cell
	Data *cell.Cell
}

// ToCell serializes split_depth, special, code, data and library fields.
func (s StateInit) ToCell() (*cell.Cell, error) {
	return cell.NewBuilder().
		StoreBit(false).
		StoreBit(false).
		StoreMaybeRef(s.Code).
		StoreMaybeRef(s.Data).
		StoreBit(false).
		EndCell()
}

// Address returns the account address derived from the state init hash.
func (s StateInit) Address(workchain int32) (Address, error) {
	c, err := s.ToCell()
	if err != nil {
		return Address{}, err
	}
	return Address{Workchain: workchain, ID: c.Hash()}, nil
}
