package classifier

import (
	"github.com/tonkeeper/tongo/ton"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"log/slog"
)

// Classify maps a transaction and its messages to a record. It never fails:
// fields that can not be decoded stay nil.
func Classify(tx core.Transaction, blockSeqno uint32, workchain int32) core.TxRecord {
	account := core.Address{Workchain: workchain, ID: tx.Account.ID}
	record := core.TxRecord{
		Hash:            tx.Hash,
		Lt:              tx.Lt,
		PrevTxHash:      tx.PrevTxHash,
		PrevTxLt:        tx.PrevTxLt,
		Account:         account,
		AccountFriendly: account.ToHuman(true, false),
		Workchain:       workchain,
		BlockSeqno:      blockSeqno,
		Utime:           tx.Utime,
		Init:            tx.OrigStatus != core.AccountActive && tx.EndStatus == core.AccountActive,
		TotalFees:       tx.TotalFees,
		OutMsgs:         make([]core.MsgRecord, 0, len(tx.OutMessages)),
	}
	applyDescription(&record, tx.Description)
	if tx.InMessage != nil {
		m := classifyMessage(*tx.InMessage, core.InDirection)
		record.InMsg = &m
	}
	for _, out := range tx.OutMessages {
		record.OutMsgs = append(record.OutMsgs, classifyMessage(out, core.OutDirection))
	}
	return record
}

func applyDescription(record *core.TxRecord, d *core.TxDescription) {
	if d == nil {
		return
	}
	record.Aborted = d.Aborted
	if d.Storage != nil {
		fee := d.Storage.FeesCollected
		record.StorageFee = &fee
	}
	if d.Compute != nil && !d.Compute.Skipped {
		fee, success, code := d.Compute.GasFees, d.Compute.Success, d.Compute.ExitCode
		record.ComputeFee = &fee
		record.ComputeSuccess = &success
		record.ComputeExitCode = &code
	}
	if d.Action != nil {
		success, code := d.Action.Success, d.Action.ResultCode
		record.ActionSuccess = &success
		record.ActionResultCode = &code
		record.ActionFwdFee = d.Action.TotalFwdFees
		record.ActionFee = d.Action.TotalActionFees
	}
}

// baseAction picks the action from the message shape, first match wins.
func baseAction(m core.Message, direction core.Direction) core.Action {
	inbound := direction == core.InDirection
	switch {
	case inbound && m.HasBody() && m.Init == nil:
		return core.InvocationAction
	case m.Init == nil && !m.HasBody():
		return core.TransferAction
	case inbound && m.Init != nil:
		return core.InitAction
	default:
		return core.TransferAction
	}
}

func classifyMessage(m core.Message, direction core.Direction) core.MsgRecord {
	record := core.MsgRecord{
		Direction:   direction,
		Kind:        m.Kind,
		Action:      baseAction(m, direction),
		Source:      m.Source,
		Destination: m.Destination,
		Value:       m.Value,
		FwdFee:      m.FwdFee,
		IhrFee:      m.IhrFee,
		CreatedLt:   m.Lt,
		Bounced:     m.Bounced,
		Init:        m.Init != nil,
	}
	if !m.HasBody() {
		return record
	}
	h := ton.Bits256(m.Body.Hash())
	record.BodyHash = &h
	if err := decodeBody(&record, m.Body.BeginParse()); err != nil {
		slog.Debug("can not decode message body", "error", err)
	}
	return record
}

func decodeBody(record *core.MsgRecord, s *cell.Slice) error {
	if s.BitsLeft() < 32 {
		return nil
	}
	op, err := s.LoadUint(32)
	if err != nil {
		return err
	}
	code := uint32(op)
	record.Op = &code
	switch {
	case code == core.OpComment || code == core.OpSimpleTransfer:
		record.Action = core.TransferAction
		bits, err := s.LoadRemainingBits(true)
		if err != nil {
			return err
		}
		comment := string(bits.Bytes())
		record.Comment = &comment
	case core.IsMintOp(code):
		record.Action = core.InvocationAction
	case code == core.OpJettonInternalTransfer || code == core.OpJettonTransferNotification:
		if err := s.SkipBits(64); err != nil {
			return err
		}
		amount, err := s.LoadCoins()
		if err != nil {
			return err
		}
		record.Amount = amount
	case code == core.OpNftTransfer:
		if err := s.SkipBits(64); err != nil {
			return err
		}
		owner, err := core.LoadAddress(s)
		if err != nil {
			return err
		}
		record.NewOwner = owner
	}
	return nil
}

