package blockchain

import (
	"fmt"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"math/big"
)

func toTonBlockID(id core.BlockID) ton.BlockID {
	return ton.BlockID{Workchain: id.Workchain, Shard: id.Shard, Seqno: id.Seqno}
}

func toTonBlockIDExt(id core.BlockIDExt) ton.BlockIDExt {
	return ton.BlockIDExt{
		BlockID:  toTonBlockID(id.BlockID),
		RootHash: id.RootHash,
		FileHash: id.FileHash,
	}
}

func fromTonBlockIDExt(id ton.BlockIDExt) core.BlockIDExt {
	return core.BlockIDExt{
		BlockID:  core.BlockID{Workchain: id.Workchain, Shard: id.Shard, Seqno: id.Seqno},
		RootHash: ton.Bits256(id.RootHash),
		FileHash: ton.Bits256(id.FileHash),
	}
}

func convertBlock(id core.BlockIDExt, block tlb.Block) (core.Block, error) {
	res := core.Block{ID: id}
	for _, accountBlock := range block.Extra.AccountBlocks.Values() {
		account := core.Address{Workchain: id.Workchain, ID: ton.Bits256(accountBlock.AccountAddr)}
		for _, ref := range accountBlock.Transactions.Values() {
			tx, err := convertTransaction(account, ref.Value)
			if err != nil {
				return core.Block{}, fmt.Errorf("transaction of %v: %w", account.ToRaw(), err)
			}
			res.Transactions = append(res.Transactions, tx)
		}
	}
	if !block.Extra.Custom.Exists {
		return res, nil
	}
	for _, item := range block.Extra.Custom.Value.Value.ShardHashes.Items() {
		hashes := core.ShardHashes{Workchain: int32(item.Key)}
		for _, descr := range item.Value.Value.BinTree.Values {
			hashes.Shards = append(hashes.Shards, convertShardDescr(descr))
		}
		res.ShardHashes = append(res.ShardHashes, hashes)
	}
	return res, nil
}

func convertShardDescr(d tlb.ShardDesc) core.ShardDescr {
	if d.SumType == "Old" {
		return core.ShardDescr{
			Seqno:              d.Old.SeqNo,
			NextValidatorShard: uint64(d.Old.NextValidatorShard),
			RootHash:           ton.Bits256(d.Old.RootHash),
			FileHash:           ton.Bits256(d.Old.FileHash),
		}
	}
	return core.ShardDescr{
		Seqno:              d.New.SeqNo,
		NextValidatorShard: uint64(d.New.NextValidatorShard),
		RootHash:           ton.Bits256(d.New.RootHash),
		FileHash:           ton.Bits256(d.New.FileHash),
	}
}

func convertTransaction(account core.Address, tx tlb.Transaction) (core.Transaction, error) {
	transaction := core.Transaction{
		Account:    account,
		Lt:         tx.Lt,
		Hash:       ton.Bits256(tx.Hash()),
		PrevTxHash: ton.Bits256(tx.PrevTransHash),
		PrevTxLt:   tx.PrevTransLt,
		Utime:      tx.Now,
		OrigStatus: core.AccountStatus(tx.OrigStatus),
		EndStatus:  core.AccountStatus(tx.EndStatus),
		TotalFees:  uint64(tx.TotalFees.Grams),
	}
	if tx.Msgs.InMsg.Exists {
		m, err := convertMessage(tx.Msgs.InMsg.Value.Value)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("in message: %w", err)
		}
		transaction.InMessage = &m
	}
	for _, out := range tx.Msgs.OutMsgs.Values() {
		m, err := convertMessage(out.Value)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("out message: %w", err)
		}
		transaction.OutMessages = append(transaction.OutMessages, m)
	}
	if tx.Description.SumType == "TransOrd" {
		transaction.Description = convertOrdinaryDescription(tx.Description.TransOrd.StoragePh, tx.Description.TransOrd.ComputePh, tx.Description.TransOrd.Action, tx.Description.TransOrd.Aborted)
	}
	return transaction, nil
}

func convertOrdinaryDescription(storage tlb.Maybe[tlb.TrStoragePhase], compute tlb.TrComputePhase, action tlb.Maybe[tlb.Ref[tlb.TrActionPhase]], aborted bool) *core.TxDescription {
	d := core.TxDescription{Aborted: aborted}
	if storage.Exists {
		d.Storage = &core.StoragePhase{FeesCollected: uint64(storage.Value.StorageFeesCollected)}
	}
	switch compute.SumType {
	case "TrPhaseComputeSkipped":
		d.Compute = &core.ComputePhase{Skipped: true}
	case "TrPhaseComputeVm":
		d.Compute = &core.ComputePhase{
			Success:  compute.TrPhaseComputeVm.Success,
			GasFees:  uint64(compute.TrPhaseComputeVm.GasFees),
			ExitCode: compute.TrPhaseComputeVm.Vm.ExitCode,
		}
	}
	if action.Exists {
		a := action.Value.Value
		phase := core.ActionPhase{Success: a.Success, ResultCode: a.ResultCode}
		if a.TotalFwdFees.Exists {
			v := uint64(a.TotalFwdFees.Value)
			phase.TotalFwdFees = &v
		}
		if a.TotalActionFees.Exists {
			v := uint64(a.TotalActionFees.Value)
			phase.TotalActionFees = &v
		}
		d.Action = &phase
	}
	return &d
}

func convertAddress(a tlb.MsgAddress) *core.Address {
	id, err := ton.AccountIDFromTlb(a)
	if err != nil || id == nil {
		return nil
	}
	res := core.AddressFromAccountID(*id)
	return &res
}

func convertMessage(m tlb.Message) (core.Message, error) {
	var message core.Message
	switch m.Info.SumType {
	case "IntMsgInfo":
		info := m.Info.IntMsgInfo
		message.Kind = core.IntMsg
		message.Source = convertAddress(info.Src)
		message.Destination = convertAddress(info.Dest)
		message.Value = uint64(info.Value.Grams)
		message.FwdFee = uint64(info.FwdFee)
		message.IhrFee = uint64(info.IhrFee)
		message.Bounce = info.Bounce
		message.Bounced = info.Bounced
		message.Lt = info.CreatedLt
		message.CreatedAt = info.CreatedAt
	case "ExtInMsgInfo":
		message.Kind = core.ExtInMsg
		message.Destination = convertAddress(m.Info.ExtInMsgInfo.Dest)
	case "ExtOutMsgInfo":
		message.Kind = core.ExtOutMsg
		message.Source = convertAddress(m.Info.ExtOutMsgInfo.Src)
		message.Lt = m.Info.ExtOutMsgInfo.CreatedLt
		message.CreatedAt = m.Info.ExtOutMsgInfo.CreatedAt
	}
	if m.Init.Exists {
		init, err := convertStateInit(m.Init.Value.Value)
		if err != nil {
			return core.Message{}, err
		}
		message.Init = &init
	}
	body := boc.Cell(m.Body.Value)
	if body.BitsAvailableForRead()+body.RefsAvailableForRead() == 0 {
		return message, nil //empty body
	}
	b, err := cell.FromTongo(body.CopyRemaining())
	if err != nil {
		return core.Message{}, fmt.Errorf("body: %w", err)
	}
	message.Body = b
	return message, nil
}

func convertStateInit(s tlb.StateInit) (core.StateInit, error) {
	var (
		res core.StateInit
		err error
	)
	if s.Code.Exists {
		res.Code, err = cell.FromTongo(&s.Code.Value.Value)
		if err != nil {
			return core.StateInit{}, fmt.Errorf("state init code: %w", err)
		}
	}
	if s.Data.Exists {
		res.Data, err = cell.FromTongo(&s.Data.Value.Value)
		if err != nil {
			return core.StateInit{}, fmt.Errorf("state init data: %w", err)
		}
	}
	return res, nil
}

func convertAccountState(addr core.Address, state tlb.ShardAccount, seqno uint32) (core.AccountSnapshot, error) {
	snapshot := core.AccountSnapshot{
		Address:    addr,
		Friendly:   addr.ToHuman(true, false),
		Status:     core.AccountStatus(state.Account.Status()),
		BlockSeqno: seqno,
	}
	if state.Account.SumType != "Account" {
		return snapshot, nil
	}
	snapshot.Balance = uint64(state.Account.Account.Storage.Balance.Grams)
	snapshot.LastTx = &core.TxID{Lt: state.LastTransLt, Hash: ton.Bits256(state.LastTransHash)}
	if snapshot.Status == core.AccountActive {
		init, err := convertStateInit(state.Account.Account.Storage.State.AccountActive.StateInit)
		if err != nil {
			return core.AccountSnapshot{}, err
		}
		snapshot.Code = init.Code
		snapshot.Data = init.Data
	}
	return snapshot, nil
}

func convertStack(stack tlb.VmStack) (Stack, error) {
	res := make(Stack, 0, len(stack))
	for i, v := range stack {
		switch v.SumType {
		case "VmStkNull":
			res = append(res, StackValue{Kind: StackNull})
		case "VmStkTinyInt":
			res = append(res, IntValue(v.VmStkTinyInt))
		case "VmStkInt":
			b := big.Int(v.VmStkInt)
			res = append(res, BigIntValue(&b))
		case "VmStkCell":
			c, err := cell.FromTongo(&v.VmStkCell.Value)
			if err != nil {
				return nil, fmt.Errorf("stack value %d: %w", i, err)
			}
			res = append(res, CellValue(c))
		case "VmStkSlice":
			c, err := cell.FromTongo(v.VmStkSlice.Cell())
			if err != nil {
				return nil, fmt.Errorf("stack value %d: %w", i, err)
			}
			res = append(res, SliceValue(c))
		default:
			return nil, fmt.Errorf("%w: unsupported stack value %v at %d", core.ErrInvalidResponseShape, v.SumType, i)
		}
	}
	return res, nil
}

func (s Stack) toTlb() (tlb.VmStack, error) {
	res := make(tlb.VmStack, 0, len(s))
	for i, v := range s {
		switch v.Kind {
		case StackNull:
			res = append(res, tlb.VmStackValue{SumType: "VmStkNull"})
		case StackInt:
			if v.Int.IsInt64() {
				res = append(res, tlb.VmStackValue{SumType: "VmStkTinyInt", VmStkTinyInt: v.Int.Int64()})
				continue
			}
			res = append(res, tlb.VmStackValue{SumType: "VmStkInt", VmStkInt: tlb.Int257(*new(big.Int).Set(v.Int))})
		case StackCell:
			c, err := v.Cell.ToTongo()
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			res = append(res, tlb.VmStackValue{SumType: "VmStkCell", VmStkCell: tlb.Ref[boc.Cell]{Value: *c}})
		default:
			return nil, fmt.Errorf("%w: unsupported param kind %v at %d", core.ErrValidation, v.Kind, i)
		}
	}
	return res, nil
}
