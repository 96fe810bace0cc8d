package payload

import (
	"github.com/stretchr/testify/require"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/classifier"
	"github.com/txsociety/tonkit/pkg/core"
	"math/big"
	"strings"
	"testing"
)

var (
	wallet = core.MustParseAddress("EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2")
	other  = core.MustParseAddress("0:00000000000000000000000000000000000000000000000000000000000000ff")
)

func classify(body *cell.Cell) core.MsgRecord {
	tx := core.Transaction{
		Account:    wallet,
		OrigStatus: core.AccountActive,
		EndStatus:  core.AccountActive,
		InMessage: &core.Message{
			Kind:        core.IntMsg,
			Source:      &other,
			Destination: &wallet,
			Body:        body,
		},
	}
	return *classifier.Classify(tx, 1, 0).InMsg
}

func TestComment(t *testing.T) {
	long := strings.Repeat("ton ", 100)
	for _, text := range []string{"", "hello", long} {
		c, err := Comment(text)
		require.NoError(t, err)
		record := classify(c)
		require.Equal(t, core.TransferAction, record.Action)
		require.Equal(t, text, *record.Comment)
	}
	_, err := Comment(string([]byte{0xff, 0xfe}))
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestNftTransfer(t *testing.T) {
	forward, err := Comment("gift")
	require.NoError(t, err)
	c, err := NftTransfer(7, other, &wallet, 1, forward)
	require.NoError(t, err)
	record := classify(c)
	require.Equal(t, core.OpNftTransfer, *record.Op)
	require.Equal(t, other, *record.NewOwner)

	s := c.BeginParse()
	require.NoError(t, s.SkipBits(32))
	queryID, err := s.LoadUint(64)
	require.NoError(t, err)
	require.Equal(t, uint64(7), queryID)
	_, err = core.LoadAddress(s)
	require.NoError(t, err)
	response, err := core.LoadAddress(s)
	require.NoError(t, err)
	require.Equal(t, wallet, *response)
	custom, err := s.LoadBit()
	require.NoError(t, err)
	require.False(t, custom)
	amount, err := s.LoadCoins()
	require.NoError(t, err)
	require.Equal(t, int64(1), amount.Int64())
	hasRef, err := s.LoadBit()
	require.NoError(t, err)
	require.True(t, hasRef)
	ref, err := s.LoadRef()
	require.NoError(t, err)
	require.True(t, forward.Equal(ref))
}

func TestJettonBodiesCarryAmount(t *testing.T) {
	amount := big.NewInt(123_456_789)
	internal, err := JettonInternalTransfer(1, amount, other, nil, 0, nil)
	require.NoError(t, err)
	notification, err := TransferNotification(1, amount, other, nil)
	require.NoError(t, err)
	for _, c := range []*cell.Cell{internal, notification} {
		record := classify(c)
		require.Equal(t, core.InvocationAction, record.Action)
		require.Equal(t, 0, amount.Cmp(record.Amount))
	}

	transfer, err := JettonTransfer(1, amount, other, &wallet, 10, nil)
	require.NoError(t, err)
	record := classify(transfer)
	require.Equal(t, core.OpJettonTransfer, *record.Op)
	require.Nil(t, record.Amount)

	_, err = JettonTransfer(1, big.NewInt(-1), other, nil, 0, nil)
	require.ErrorIs(t, err, cell.ErrValueRange)
}
