package core

import "github.com/txsociety/tonkit/pkg/cell"

type SendMode uint8

const (
	SendModePayFeesSeparately SendMode = 1
	SendModeIgnoreErrors      SendMode = 2
	SendModeDestroyIfZero     SendMode = 32
	SendModeCarryRemaining    SendMode = 64
	SendModeCarryAll          SendMode = 128

	DefaultSendMode = SendModePayFeesSeparately | SendModeIgnoreErrors
)

// WalletTransfer is one outgoing internal message requested from a wallet.
type WalletTransfer struct {
	Destination Address
	Amount      uint64
	Bounceable  bool
	Mode        SendMode
	Body        *cell.Cell
	Init        *StateInit
}
