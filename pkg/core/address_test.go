package core

import (
	"github.com/stretchr/testify/require"
	"github.com/txsociety/tonkit/pkg/cell"
	tuAddress "github.com/xssnick/tonutils-go/address"
	"strings"
	"testing"
)

const (
	rawVector        = "0:237E5119FFA2A028CC4F95C9CA37566852F1DD4D3EA15704D6F791065507DE4A"
	bounceableVector = "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha2"
	testnetVector    = "0QAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSvD5"
)

func TestParseAddress(t *testing.T) {
	raw, err := ParseAddress(rawVector)
	require.NoError(t, err)
	require.Equal(t, int32(0), raw.Workchain)
	require.Equal(t, strings.ToLower(rawVector), raw.ToRaw())
	require.Equal(t, bounceableVector, raw.ToHuman(true, false))
	require.Equal(t, testnetVector, raw.ToHuman(false, true))

	friendly, flags, err := ParseAddressWithFlags(bounceableVector)
	require.NoError(t, err)
	require.Equal(t, raw, friendly)
	require.True(t, flags.Bounceable)
	require.False(t, flags.Testnet)
	require.True(t, flags.URLSafe)

	testnet, flags, err := ParseAddressWithFlags(testnetVector)
	require.NoError(t, err)
	require.Equal(t, raw, testnet)
	require.False(t, flags.Bounceable)
	require.True(t, flags.Testnet)
}

func TestAddressFormatsRoundTrip(t *testing.T) {
	a := MustParseAddress("-1:3333333333333333333333333333333333333333333333333333333333333333")
	for _, flags := range []AddressFlags{
		{Bounceable: true, URLSafe: true},
		{Bounceable: false, URLSafe: true},
		{Bounceable: true, Testnet: true},
		{Bounceable: false, Testnet: true},
		{Bounceable: true},
	} {
		s := a.Format(flags)
		parsed, parsedFlags, err := ParseAddressWithFlags(s)
		require.NoError(t, err)
		require.Equal(t, a, parsed)
		require.Equal(t, flags.Bounceable, parsedFlags.Bounceable)
		require.Equal(t, flags.Testnet, parsedFlags.Testnet)

		tu, err := tuAddress.ParseAddr(s)
		require.NoError(t, err)
		require.Equal(t, a.Workchain, tu.Workchain())
		require.Equal(t, a.ID[:], tu.Data())
	}
}

func TestParseAddressValidation(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"broken checksum", "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfeSha3"},
		{"short", "EQAjflEZ_6KgKMxPlcnKN1Zo"},
		{"bad workchain", "x:237E5119FFA2A028CC4F95C9CA37566852F1DD4D3EA15704D6F791065507DE4A"},
		{"short id", "0:237E51"},
		{"workchain above int8", "1000:00000000000000000000000000000000000000000000000000000000000000ff"},
		{"workchain below int8", "-129:00000000000000000000000000000000000000000000000000000000000000ff"},
		{"not base64", "EQAjflEZ_6KgKMxPlcnKN1ZoUvHdTT6hVwTW95EGVQfe!!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAddress(tt.addr)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAddressWorkchainBounds(t *testing.T) {
	for _, raw := range []string{
		"-128:00000000000000000000000000000000000000000000000000000000000000ff",
		"127:00000000000000000000000000000000000000000000000000000000000000ff",
	} {
		a, err := ParseAddress(raw)
		require.NoError(t, err)
		require.Equal(t, raw, a.ToRaw())
		friendly, err := ParseAddress(a.ToHuman(true, false))
		require.NoError(t, err)
		require.Equal(t, a, friendly)
	}
}

func TestParseAddressMixedAlphabets(t *testing.T) {
	a := MustParseAddress(bounceableVector)
	std := a.Format(AddressFlags{Bounceable: true})
	require.NotEqual(t, bounceableVector, std)
	parsed, flags, err := ParseAddressWithFlags(std)
	require.NoError(t, err)
	require.Equal(t, a, parsed)
	require.True(t, flags.Bounceable)
	require.False(t, flags.URLSafe)
}

func TestAddressCellRoundTrip(t *testing.T) {
	a := MustParseAddress(bounceableVector)
	c, err := StoreAddress(StoreAddress(cell.NewBuilder(), &a), nil).EndCell()
	require.NoError(t, err)
	require.Equal(t, 267+2, c.BitLen())

	s := c.BeginParse()
	loaded, err := LoadAddress(s)
	require.NoError(t, err)
	require.Equal(t, a, *loaded)
	none, err := LoadAddress(s)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestAddressAccountID(t *testing.T) {
	a := MustParseAddress(bounceableVector)
	require.Equal(t, a, AddressFromAccountID(a.AccountID()))
	require.Equal(t, strings.ToLower(rawVector), a.AccountID().ToRaw())
}
