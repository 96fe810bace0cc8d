package blockchain

import (
	"context"
	"errors"
	"fmt"
	"github.com/tonkeeper/tongo/abi"
	"github.com/tonkeeper/tongo/config"
	"github.com/tonkeeper/tongo/liteapi"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"
	"github.com/txsociety/tonkit/pkg/core"
	"log/slog"
	"sync"
	"time"
)

// Client is the remote node collaborator backed by a pool of lite servers.
type Client struct {
	connection *liteapi.Client

	lastMasterchainBlockLock sync.RWMutex
	lastMasterchainBlock     *ton.BlockIDExt
}

// ExitCodeError is returned when a get-method finished with a non-success exit code.
type ExitCodeError struct {
	Method   string
	ExitCode uint32
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("get-method %v exited with code %d", e.Method, e.ExitCode)
}

func New(ls []config.LiteServer) (*Client, error) {
	options := make([]liteapi.Option, 0)
	if len(ls) > 0 {
		options = append(options, liteapi.WithLiteServers(ls))
		options = append(options, liteapi.WithMaxConnectionsNumber(len(ls)))
	} else {
		options = append(options, liteapi.Mainnet())
		slog.Warn("liteservers are not set, retrieving liteservers from global config")
	}
	api, err := liteapi.NewClient(options...)
	if err != nil {
		return nil, err
	}
	c := &Client{
		connection: api,
	}
	return c, nil
}

// RunBlockWatcher blocks until the first masterchain block is known and keeps it fresh in background.
func (c *Client) RunBlockWatcher(ctx context.Context, wg *sync.WaitGroup) {
	slog.Info("initializing client")
	wait := make(chan struct{})
	wg.Add(1)
	go c.runBlockWatcher(ctx, wg, wait)
	select {
	case <-wait:
		slog.Info("client initialized")
	case <-ctx.Done():
	}
}

func (c *Client) runBlockWatcher(ctx context.Context, wg *sync.WaitGroup, wait chan struct{}) {
	slog.Info("block watcher started")
	defer wg.Done()

	initialized := false
	for {
		if !initialized {
			_, err := c.updateMasterchainBlock(ctx, time.Minute)
			if err != nil {
				slog.Error("can not get masterchain block", "error", err)
				select {
				case <-ctx.Done():
					slog.Info("block watcher stopped")
					return
				case <-time.After(2 * time.Second):
				}
				continue
			}
			initialized = true
			close(wait)
		}
		select {
		case <-ctx.Done():
			slog.Info("block watcher stopped")
			return
		case <-time.After(5 * time.Second):
			_, err := c.updateMasterchainBlock(ctx, time.Minute)
			if err != nil {
				slog.Error("can not update block", "error", err)
			}
		}
	}
}

func (c *Client) updateMasterchainBlock(ctx context.Context, timeout time.Duration) (ton.BlockIDExt, error) {
	ctx1, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	info, err := c.connection.GetMasterchainInfo(ctx1)
	if err != nil {
		return ton.BlockIDExt{}, fmt.Errorf("%w: can not get masterchain info: %v", core.ErrTransport, err)
	}
	block := info.Last.ToBlockIdExt()
	c.lastMasterchainBlockLock.Lock()
	c.lastMasterchainBlock = &block
	c.lastMasterchainBlockLock.Unlock()
	return block, nil
}

func (c *Client) getLastMasterchainBlock() (ton.BlockIDExt, bool) {
	c.lastMasterchainBlockLock.RLock()
	defer c.lastMasterchainBlockLock.RUnlock()
	if c.lastMasterchainBlock == nil {
		return ton.BlockIDExt{}, false
	}
	return *c.lastMasterchainBlock, true
}

// MasterchainHead asks the node for the latest masterchain block.
func (c *Client) MasterchainHead(ctx context.Context) (core.BlockIDExt, error) {
	block, err := c.updateMasterchainBlock(ctx, time.Minute)
	if err != nil {
		return core.BlockIDExt{}, err
	}
	return fromTonBlockIDExt(block), nil
}

// at pins requests to the given block, to the watched masterchain block or to whatever the node considers the latest.
func (c *Client) at(block *core.BlockIDExt) (*liteapi.Client, uint32) {
	if block != nil {
		return c.connection.WithBlock(toTonBlockIDExt(*block)), block.Seqno
	}
	if last, ok := c.getLastMasterchainBlock(); ok {
		return c.connection.WithBlock(last), last.Seqno
	}
	return c.connection, 0
}

func (c *Client) GetAccountState(ctx context.Context, addr core.Address, block *core.BlockIDExt) (core.AccountSnapshot, error) {
	conn, seqno := c.at(block)
	state, err := conn.GetAccountState(ctx, addr.AccountID())
	if err != nil {
		return core.AccountSnapshot{}, fmt.Errorf("%w: get account state %v: %v", core.ErrTransport, addr.ToRaw(), err)
	}
	return convertAccountState(addr, state, seqno)
}

func (c *Client) IsContractDeployed(ctx context.Context, addr core.Address) (bool, error) {
	state, err := c.GetAccountState(ctx, addr, nil)
	if err != nil {
		return false, err
	}
	return state.Status == core.AccountActive, nil
}

func (c *Client) GetBlock(ctx context.Context, id core.BlockIDExt) (core.Block, error) {
	block, err := c.connection.GetBlock(ctx, toTonBlockIDExt(id))
	if err != nil {
		return core.Block{}, fmt.Errorf("%w: get block %v: %v", core.ErrTransport, id.BlockID, err)
	}
	return convertBlock(id, block)
}

// LookupBlock resolves a block by workchain, shard and seqno.
func (c *Client) LookupBlock(ctx context.Context, id core.BlockID) (core.BlockIDExt, error) {
	block, _, err := c.connection.LookupBlock(ctx, toTonBlockID(id), 1, nil, nil)
	if err != nil {
		return core.BlockIDExt{}, fmt.Errorf("%w: lookup block %v: %v", core.ErrTransport, id, err)
	}
	return fromTonBlockIDExt(block), nil
}

// RunGetMethod executes a read-only contract method. Exit codes 0 and 1 are successful.
func (c *Client) RunGetMethod(ctx context.Context, addr core.Address, method string, params Stack, block *core.BlockIDExt) (Stack, error) {
	args, err := params.toTlb()
	if err != nil {
		return nil, err
	}
	conn, _ := c.at(block)
	exitCode, stack, err := conn.RunSmcMethod(ctx, addr.AccountID(), method, args)
	if err != nil {
		return nil, fmt.Errorf("%w: run %v on %v: %v", core.ErrTransport, method, addr.ToRaw(), err)
	}
	if exitCode != 0 && exitCode != 1 {
		return nil, &ExitCodeError{Method: method, ExitCode: exitCode}
	}
	return convertStack(stack)
}

// RunSmcMethodByID lets the client act as an abi executor.
func (c *Client) RunSmcMethodByID(ctx context.Context, accountID ton.AccountID, methodID int, params tlb.VmStack) (uint32, tlb.VmStack, error) {
	conn, _ := c.at(nil)
	return conn.RunSmcMethodByID(ctx, accountID, methodID, params)
}

// SendMessage submits a serialized external message.
func (c *Client) SendMessage(ctx context.Context, payload []byte) error {
	code, err := c.connection.SendMessage(ctx, payload)
	if err != nil {
		return fmt.Errorf("%w: send message: %v", core.ErrTransport, err)
	}
	if code != 1 {
		return fmt.Errorf("%w: send message: unexpected status %d", core.ErrTransport, code)
	}
	return nil
}

func (c *Client) getJettonWallet(ctx context.Context, jettonMaster, owner ton.AccountID) (ton.AccountID, error) {
	_, resp, err := abi.GetWalletAddress(ctx, c, jettonMaster, owner.ToMsgAddress())
	if err != nil {
		return ton.AccountID{}, fmt.Errorf("%w: can not get jetton wallet address: %v", core.ErrTransport, err)
	}
	body, ok := resp.(abi.GetWalletAddressResult)
	if !ok {
		return ton.AccountID{}, fmt.Errorf("%w: invalid response for get_wallet_address", core.ErrInvalidResponseShape)
	}
	wallet, err := ton.AccountIDFromTlb(body.JettonWalletAddress)
	if err != nil {
		return ton.AccountID{}, fmt.Errorf("%w: invalid jetton wallet account id: %v", core.ErrInvalidResponseShape, err)
	}
	if wallet == nil {
		return ton.AccountID{}, fmt.Errorf("%w: jetton wallet account is none", core.ErrInvalidResponseShape)
	}
	return *wallet, nil
}

func (c *Client) getJettonData(ctx context.Context, account ton.AccountID) (ton.AccountID, ton.AccountID, error) {
	_, resp, err := abi.GetWalletData(ctx, c, account)
	if err != nil {
		return ton.AccountID{}, ton.AccountID{}, fmt.Errorf("%w: can not get jetton data: %v", core.ErrTransport, err)
	}
	body, ok := resp.(abi.GetWalletDataResult)
	if !ok {
		return ton.AccountID{}, ton.AccountID{}, fmt.Errorf("%w: invalid response for get_wallet_data", core.ErrInvalidResponseShape)
	}
	jetton, err := ton.AccountIDFromTlb(body.Jetton)
	if err != nil || jetton == nil {
		return ton.AccountID{}, ton.AccountID{}, fmt.Errorf("%w: invalid jetton account id", core.ErrInvalidResponseShape)
	}
	owner, err := ton.AccountIDFromTlb(body.Owner)
	if err != nil || owner == nil {
		return ton.AccountID{}, ton.AccountID{}, fmt.Errorf("%w: invalid owner account id", core.ErrInvalidResponseShape)
	}
	return *jetton, *owner, nil
}

// GetJettonWallet calculates the wallet address and validates it if it deployed.
func (c *Client) GetJettonWallet(ctx context.Context, jettonMaster, owner core.Address) (core.Address, error) {
	jWallet, err := c.getJettonWallet(ctx, jettonMaster.AccountID(), owner.AccountID())
	if err != nil {
		return core.Address{}, err
	}
	wallet := core.AddressFromAccountID(jWallet)
	deployed, err := c.IsContractDeployed(ctx, wallet)
	if err != nil {
		return core.Address{}, err
	}
	if !deployed {
		slog.Warn("jetton wallet is not deployed. It cannot be verified that it refers to the correct Jetton master", "account", wallet.ToRaw())
		return wallet, nil
	}
	master, walletOwner, err := c.getJettonData(ctx, jWallet)
	if err != nil {
		return core.Address{}, err
	}
	if master != jettonMaster.AccountID() {
		return core.Address{}, errors.New("jetton master from Jetton wallet is not equal to Jetton master")
	}
	if walletOwner != owner.AccountID() {
		return core.Address{}, errors.New("wallet owner from jetton wallet is not equal to owner")
	}
	return wallet, nil
}
