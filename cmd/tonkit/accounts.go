package main

import (
	"context"
	"fmt"
	"github.com/txsociety/tonkit/pkg/blockchain"
	"github.com/txsociety/tonkit/pkg/core"
	"log/slog"
)

// getAccountsForTracking returns the owners followed by their jetton wallets for every tracked jetton.
func getAccountsForTracking(ctx context.Context, bcClient *blockchain.Client, owners []core.Address, jettons []core.Address) ([]core.Address, error) {
	accounts := make([]core.Address, 0, len(owners)*(1+len(jettons)))
	for _, owner := range owners {
		accounts = append(accounts, owner)
		for _, master := range jettons {
			jettonWallet, err := bcClient.GetJettonWallet(ctx, master, owner)
			if err != nil {
				return nil, fmt.Errorf("jetton wallet of %v for master %v: %w", owner, master, err)
			}
			accounts = append(accounts, jettonWallet)
		}
	}
	for _, acc := range accounts {
		state, err := bcClient.GetAccountState(ctx, acc, nil)
		if err != nil {
			return nil, err
		}
		slog.Info("tracking account", "address", acc.ToHuman(true, false), "status", state.Status, "balance", state.Balance)
	}
	return accounts, nil
}
