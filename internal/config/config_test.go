package config

import (
	"github.com/stretchr/testify/require"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/wallet"
	"log/slog"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse()
	require.NoError(t, err)
	require.Equal(t, 8081, c.Port)
	require.Equal(t, slog.LevelInfo, c.LogLevel)
	require.Equal(t, 4, c.RetryAttempts)
	require.Equal(t, 100*time.Millisecond, c.RetryDelay)
	require.Equal(t, 350*time.Millisecond, c.MaxLatency)
	require.Equal(t, wallet.V4R2, c.Wallet.Version)
	require.Equal(t, uint32(698983191), c.Wallet.SubWallet())
	require.False(t, c.Wallet.Configured())
	require.False(t, c.Indexer.Enabled)
	require.Equal(t, 5*time.Second, c.Indexer.PollInterval)
}

func TestParseValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("WALLET_VERSION", "highload_v2")
	t.Setenv("WALLET_WORKCHAIN", "-1")
	t.Setenv("WALLET_SEED", "word")
	t.Setenv("INDEXER_ENABLED", "true")
	t.Setenv("INDEXER_POLL_INTERVAL", "2s")
	t.Setenv("TRACKED_ACCOUNTS", "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2, 0:00000000000000000000000000000000000000000000000000000000000000ff")
	c, err := Parse()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, c.LogLevel)
	require.Equal(t, wallet.HighloadV2, c.Wallet.Version)
	require.Equal(t, uint32(698983190), c.Wallet.SubWallet())
	require.True(t, c.Wallet.Configured())
	require.True(t, c.Indexer.Enabled)
	require.Equal(t, 2*time.Second, c.Indexer.PollInterval)
	require.Len(t, c.Indexer.Accounts, 2)
	require.Equal(t, core.MustParseAddress("EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2"), c.Indexer.Accounts[0])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown wallet", "WALLET_VERSION", "v5"},
		{"bad address", "TRACKED_ACCOUNTS", "0:zz"},
		{"duplicated address", "TRACKED_ACCOUNTS", "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2,EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2"},
		{"no retries", "RETRY_ATTEMPTS", "0"},
		{"jettons without owners", "TRACKED_JETTONS", "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			require.Error(t, err)
		})
	}
}
