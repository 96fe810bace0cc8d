package blockchain

import (
	"context"
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/content"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/metrics"
	"github.com/txsociety/tonkit/pkg/retry"
	"math/big"
	"testing"
	"time"
)

type call struct {
	method string
	params Stack
}

type FakeExecutor struct {
	results map[string][]fakeResult
	calls   []call
}

type fakeResult struct {
	stack Stack
	err   error
}

func (f *FakeExecutor) on(method string, stack Stack, err error) *FakeExecutor {
	if f.results == nil {
		f.results = make(map[string][]fakeResult)
	}
	f.results[method] = append(f.results[method], fakeResult{stack: stack, err: err})
	return f
}

func (f *FakeExecutor) RunGetMethod(_ context.Context, _ core.Address, method string, params Stack, _ *core.BlockIDExt) (Stack, error) {
	f.calls = append(f.calls, call{method: method, params: params})
	queue := f.results[method]
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: no result for %v", core.ErrTransport, method)
	}
	res := queue[0]
	if len(queue) > 1 {
		f.results[method] = queue[1:]
	}
	return res.stack, res.err
}

type noSleep struct {
	delays []time.Duration
}

func (n *noSleep) Sleep(ctx context.Context, d time.Duration) error {
	n.delays = append(n.delays, d)
	return ctx.Err()
}

func newTestCaller(e executor) (*Caller, *noSleep) {
	sleeper := &noSleep{}
	p := retry.DefaultPolicy()
	p.Sleep = sleeper.Sleep
	return NewCaller(e, p, metrics.NewMetrics("test", prometheus.NewRegistry())), sleeper
}

var testAddress = core.MustParseAddress("EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2")

func TestCallRetriesTransportErrors(t *testing.T) {
	transport := fmt.Errorf("%w: timeout", core.ErrTransport)
	e := (&FakeExecutor{}).
		on("seqno", nil, transport).
		on("seqno", nil, &ExitCodeError{Method: "seqno", ExitCode: 11}).
		on("seqno", nil, nil).
		on("seqno", Stack{IntValue(7)}, nil)
	c, sleeper := newTestCaller(e)

	seqno, err := c.GetSeqno(context.Background(), testAddress)
	require.NoError(t, err)
	require.Equal(t, uint32(7), seqno)
	require.Len(t, e.calls, 4)
	require.Equal(t, []time.Duration{retry.DefaultDelay, retry.DefaultDelay, retry.DefaultDelay}, sleeper.delays)
}

func TestCallExhausted(t *testing.T) {
	transport := fmt.Errorf("%w: timeout", core.ErrTransport)
	e := (&FakeExecutor{}).on("seqno", nil, transport)
	c, sleeper := newTestCaller(e)

	_, err := c.Call(context.Background(), testAddress, "seqno", nil, nil)
	var failure *retry.Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, 4, failure.Attempts)
	require.ErrorIs(t, err, core.ErrTransport)
	require.Len(t, e.calls, 4)
	require.Len(t, sleeper.delays, 3)
}

func TestCallDoesNotRetryPermanentErrors(t *testing.T) {
	for _, permanent := range []error{
		fmt.Errorf("%w: bad stack", core.ErrInvalidResponseShape),
		fmt.Errorf("%w: bad param", core.ErrValidation),
		cell.ErrUnderflow,
		context.Canceled,
	} {
		e := (&FakeExecutor{}).on("seqno", nil, permanent)
		c, sleeper := newTestCaller(e)
		_, err := c.Call(context.Background(), testAddress, "seqno", nil, nil)
		require.ErrorIs(t, err, permanent)
		require.Len(t, e.calls, 1)
		require.Empty(t, sleeper.delays)
	}
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(core.ErrTransport))
	require.True(t, IsRetryable(&ExitCodeError{Method: "seqno", ExitCode: 9}))
	require.False(t, IsRetryable(fmt.Errorf("wrap: %w", cell.ErrOverflow)))
	require.False(t, IsRetryable(context.DeadlineExceeded))
}

func nftDataStack(t *testing.T, collection *core.Address, individual *cell.Cell) Stack {
	owner := testAddress
	ownerCell, err := core.StoreAddress(cell.NewBuilder(), &owner).EndCell()
	require.NoError(t, err)
	collectionCell, err := core.StoreAddress(cell.NewBuilder(), collection).EndCell()
	require.NoError(t, err)
	return Stack{IntValue(-1), IntValue(12), SliceValue(collectionCell), SliceValue(ownerCell), CellValue(individual)}
}

func TestGetNftData(t *testing.T) {
	individual, err := content.PackOffChain("https://x.io/12.json")
	require.NoError(t, err)
	e := (&FakeExecutor{}).on("get_nft_data", nftDataStack(t, nil, individual), nil)
	c, _ := newTestCaller(e)

	item, err := c.GetNftData(context.Background(), testAddress, nil)
	require.NoError(t, err)
	require.True(t, item.Initialized)
	require.Equal(t, int64(12), item.Index.Int64())
	require.Nil(t, item.Collection)
	require.Equal(t, testAddress, *item.Owner)
	require.Equal(t, "https://x.io/12.json", item.Content.MetadataURL)
}

func TestGetNftDataWrongDepth(t *testing.T) {
	e := (&FakeExecutor{}).on("get_nft_data", Stack{IntValue(-1), IntValue(1), {Kind: StackNull}, {Kind: StackNull}}, nil)
	c, sleeper := newTestCaller(e)

	_, err := c.GetNftData(context.Background(), testAddress, nil)
	require.ErrorIs(t, err, core.ErrInvalidResponseShape)
	require.Len(t, e.calls, 1)
	require.Empty(t, sleeper.delays)
}

func TestGetNftItemResolvesCollectionContent(t *testing.T) {
	collection := core.MustParseAddress("0:0000000000000000000000000000000000000000000000000000000000000001")
	individual, err := cell.NewBuilder().StoreStringSnake("12.json").EndCell()
	require.NoError(t, err)
	full, err := content.PackOffChain("https://x.io/items/12.json")
	require.NoError(t, err)
	e := (&FakeExecutor{}).
		on("get_nft_data", nftDataStack(t, &collection, individual), nil).
		on("get_nft_content", Stack{CellValue(full)}, nil)
	c, _ := newTestCaller(e)

	item, err := c.GetNftItem(context.Background(), testAddress, nil)
	require.NoError(t, err)
	require.Equal(t, collection, *item.Collection)
	require.Equal(t, "https://x.io/items/12.json", item.Content.MetadataURL)
	require.Len(t, e.calls, 2)
	params := e.calls[1].params
	require.Len(t, params, 2)
	require.Equal(t, 0, big.NewInt(12).Cmp(params[0].Int))
	require.True(t, individual.Equal(params[1].Cell))
}

func TestGetCollectionData(t *testing.T) {
	raw, err := content.PackOffChain("https://x.io/collection.json")
	require.NoError(t, err)
	ownerCell, err := core.StoreAddress(cell.NewBuilder(), &testAddress).EndCell()
	require.NoError(t, err)
	e := (&FakeExecutor{}).on("get_collection_data", Stack{IntValue(100), CellValue(raw), SliceValue(ownerCell)}, nil)
	c, _ := newTestCaller(e)

	data, err := c.GetCollectionData(context.Background(), testAddress, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), data.NextItemIndex.Int64())
	require.Equal(t, "https://x.io/collection.json", data.Content.MetadataURL)
	require.Equal(t, testAddress, *data.Owner)
}

func TestGetNftAddressByIndex(t *testing.T) {
	itemCell, err := core.StoreAddress(cell.NewBuilder(), &testAddress).EndCell()
	require.NoError(t, err)
	e := (&FakeExecutor{}).
		on("get_nft_address_by_index", Stack{SliceValue(itemCell)}, nil).
		on("get_nft_address_by_index", Stack{SliceValue(cell.EmptyCell())}, nil)
	c, _ := newTestCaller(e)

	addr, err := c.GetNftAddressByIndex(context.Background(), testAddress, big.NewInt(3), nil)
	require.NoError(t, err)
	require.Equal(t, testAddress, addr)
	require.Equal(t, int64(3), e.calls[0].params[0].Int.Int64())

	_, err = c.GetNftAddressByIndex(context.Background(), testAddress, big.NewInt(4), nil)
	require.ErrorIs(t, err, core.ErrInvalidResponseShape)
}
