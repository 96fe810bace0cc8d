package classifier

import (
	"github.com/stretchr/testify/require"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"math/big"
	"testing"
)

var (
	wallet = core.MustParseAddress("EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2")
	sender = core.MustParseAddress("0:0000000000000000000000000000000000000000000000000000000000000002")
)

func body(t *testing.T, b *cell.Builder) *cell.Cell {
	c, err := b.EndCell()
	require.NoError(t, err)
	return c
}

func inbound(body *cell.Cell, init *core.StateInit) core.Transaction {
	return core.Transaction{
		Account:    wallet,
		Lt:         100,
		OrigStatus: core.AccountActive,
		EndStatus:  core.AccountActive,
		InMessage: &core.Message{
			Kind:        core.IntMsg,
			Source:      &sender,
			Destination: &wallet,
			Value:       1_000_000_000,
			Lt:          99,
			Body:        body,
			Init:        init,
		},
	}
}

func TestClassifyInboundActions(t *testing.T) {
	init := &core.StateInit{Code: cell.EmptyCell(), Data: cell.EmptyCell()}
	tests := []struct {
		name    string
		body    *cell.Cell
		init    *core.StateInit
		action  core.Action
		op      *uint32
		comment *string
	}{
		{name: "empty body", action: core.TransferAction},
		{name: "empty cell body", body: cell.EmptyCell(), action: core.TransferAction},
		{
			name:    "simple transfer comment",
			body:    body(t, cell.NewBuilder().StoreUint(uint64(core.OpSimpleTransfer), 32).StoreBytes([]byte("hello"))),
			action:  core.TransferAction,
			op:      ptr(core.OpSimpleTransfer),
			comment: ptr("hello"),
		},
		{
			name:    "text comment",
			body:    body(t, cell.NewBuilder().StoreUint(0, 32).StoreStringSnake("thanks")),
			action:  core.TransferAction,
			op:      ptr(core.OpComment),
			comment: ptr("thanks"),
		},
		{name: "state init", init: init, action: core.InitAction},
		{
			name:   "state init with body",
			body:   body(t, cell.NewBuilder().StoreUint(0x12345678, 32)),
			init:   init,
			action: core.InitAction,
			op:     ptr(uint32(0x12345678)),
		},
		{
			name:   "unknown op",
			body:   body(t, cell.NewBuilder().StoreUint(0xABCDEF01, 32)),
			action: core.InvocationAction,
			op:     ptr(uint32(0xABCDEF01)),
		},
		{
			name:   "mint",
			body:   body(t, cell.NewBuilder().StoreUint(uint64(core.OpJettonMinterMint), 32).StoreUint(0, 64)),
			init:   init,
			action: core.InvocationAction,
			op:     ptr(core.OpJettonMinterMint),
		},
		{
			name:   "short body",
			body:   body(t, cell.NewBuilder().StoreUint(7, 16)),
			action: core.InvocationAction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Classify(inbound(tt.body, tt.init), 10, 0)
			require.NotNil(t, record.InMsg)
			require.Equal(t, tt.action, record.InMsg.Action)
			require.Equal(t, tt.op, record.InMsg.Op)
			require.Equal(t, tt.comment, record.InMsg.Comment)
			require.Equal(t, tt.init != nil, record.InMsg.Init)
			require.Equal(t, core.InDirection, record.InMsg.Direction)
		})
	}
}

func TestClassifyJettonAmount(t *testing.T) {
	for _, op := range []uint32{core.OpJettonInternalTransfer, core.OpJettonTransferNotification} {
		b := body(t, cell.NewBuilder().StoreUint(uint64(op), 32).StoreUint(42, 64).StoreCoins(big.NewInt(5_000_000)))
		record := Classify(inbound(b, nil), 10, 0)
		require.Equal(t, op, *record.InMsg.Op)
		require.Equal(t, core.InvocationAction, record.InMsg.Action)
		require.Equal(t, 0, big.NewInt(5_000_000).Cmp(record.InMsg.Amount))
	}
}

func TestClassifyNftTransfer(t *testing.T) {
	owner := core.MustParseAddress("0:00000000000000000000000000000000000000000000000000000000000000ff")
	b := cell.NewBuilder().StoreUint(uint64(core.OpNftTransfer), 32).StoreUint(1, 64)
	core.StoreAddress(b, &owner)
	record := Classify(inbound(body(t, b), nil), 10, 0)
	require.Equal(t, owner, *record.InMsg.NewOwner)
	require.NotNil(t, record.InMsg.BodyHash)
}

func TestClassifyBrokenBodyKeepsRecord(t *testing.T) {
	b := body(t, cell.NewBuilder().StoreUint(uint64(core.OpNftTransfer), 32).StoreUint(1, 8))
	record := Classify(inbound(b, nil), 10, 0)
	require.Equal(t, core.OpNftTransfer, *record.InMsg.Op)
	require.Nil(t, record.InMsg.NewOwner)
	require.Equal(t, core.InvocationAction, record.InMsg.Action)
}

func TestClassifyOutMessages(t *testing.T) {
	tx := inbound(nil, nil)
	tx.InMessage.Kind = core.ExtInMsg
	tx.InMessage.Source = nil
	tx.InMessage.Body = body(t, cell.NewBuilder().StoreUint(0xDEAD, 32))
	tx.OutMessages = []core.Message{
		{Kind: core.IntMsg, Source: &wallet, Destination: &sender, Value: 5},
		{Kind: core.IntMsg, Source: &wallet, Destination: &sender, Body: body(t, cell.NewBuilder().StoreUint(0x77, 32))},
	}
	record := Classify(tx, 10, 0)
	require.Equal(t, core.ExtInMsg, record.InMsg.Kind)
	require.Len(t, record.OutMsgs, 2)
	require.Equal(t, core.TransferAction, record.OutMsgs[0].Action)
	require.Equal(t, uint64(5), record.OutMsgs[0].Value)
	// outbound bodies never count as invocations
	require.Equal(t, core.TransferAction, record.OutMsgs[1].Action)
	require.Equal(t, core.OutDirection, record.OutMsgs[1].Direction)
}

func TestClassifyTransactionFields(t *testing.T) {
	tx := inbound(nil, nil)
	record := Classify(tx, 10, 0)
	require.Nil(t, record.StorageFee)
	require.Nil(t, record.ComputeFee)
	require.Nil(t, record.ActionFee)
	require.Nil(t, record.ComputeSuccess)
	require.False(t, record.Init)
	require.Equal(t, uint32(10), record.BlockSeqno)
	require.Equal(t, "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2", record.AccountFriendly)

	fwd, action := uint64(3), uint64(4)
	tx.OrigStatus = core.AccountUninit
	tx.Description = &core.TxDescription{
		Storage: &core.StoragePhase{FeesCollected: 1},
		Compute: &core.ComputePhase{Success: true, GasFees: 2, ExitCode: 0},
		Action:  &core.ActionPhase{Success: true, ResultCode: 0, TotalFwdFees: &fwd, TotalActionFees: &action},
	}
	record = Classify(tx, 11, -1)
	require.True(t, record.Init)
	require.Equal(t, int32(-1), record.Workchain)
	require.Equal(t, int32(-1), record.Account.Workchain)
	require.Equal(t, uint64(1), *record.StorageFee)
	require.Equal(t, uint64(2), *record.ComputeFee)
	require.True(t, *record.ComputeSuccess)
	require.Equal(t, uint64(3), *record.ActionFwdFee)
	require.Equal(t, uint64(4), *record.ActionFee)
	require.True(t, *record.ActionSuccess)

	tx.Description = &core.TxDescription{Compute: &core.ComputePhase{Skipped: true}}
	record = Classify(tx, 11, 0)
	require.Nil(t, record.ComputeFee)
	require.Nil(t, record.ComputeExitCode)
}

func ptr[T any](v T) *T {
	return &v
}
