package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"github.com/tonkeeper/tongo/wallet"
	"github.com/txsociety/tonkit/pkg/core"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/pbkdf2"
	"log/slog"
	"strings"
)

type seqnoReader interface {
	GetSeqno(ctx context.Context, wallet core.Address) (uint32, error)
}

type sender interface {
	SendMessage(ctx context.Context, payload []byte) error
}

// Wallet signs transfers for one deployed (or yet to be deployed) wallet contract.
type Wallet struct {
	variant     Variant
	signer      Signer
	workchain   int32
	subWalletID uint32
	address     core.Address
	seqno       seqnoReader
	sender      sender
}

func New(variant Variant, signer Signer, workchain int32, subWalletID uint32, seqno seqnoReader, sender sender) (*Wallet, error) {
	address, err := variant.Address(signer.PublicKey(), workchain, subWalletID)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		variant:     variant,
		signer:      signer,
		workchain:   workchain,
		subWalletID: subWalletID,
		address:     address,
		seqno:       seqno,
		sender:      sender,
	}, nil
}

// FromSeed creates a wallet from a space separated mnemonic.
func FromSeed(seed string, variant Variant, workchain int32, subWalletID uint32, seqno seqnoReader, sender sender) (*Wallet, error) {
	if len(strings.Fields(seed)) == 0 {
		return nil, fmt.Errorf("%w: empty seed", core.ErrValidation)
	}
	key, err := wallet.SeedToPrivateKey(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	signer, err := NewKeySigner(key)
	if err != nil {
		return nil, err
	}
	return New(variant, signer, workchain, subWalletID, seqno, sender)
}

// KeyFromSecret derives a private key from a hex encoded 32 byte secret.
func KeyFromSecret(secret string) (ed25519.PrivateKey, error) {
	b, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: key must be 32 bytes long", core.ErrValidation)
	}
	seed := pbkdf2.Key(b, []byte("wallet"), 1, 32, sha256.New)
	return ed25519.NewKeyFromSeed(seed), nil
}

func (w *Wallet) Address() core.Address {
	return w.address
}

func (w *Wallet) Variant() Variant {
	return w.variant
}

// Transfer builds and submits a signed external message. A failed seqno read is treated as an undeployed wallet.
// Delivery is not confirmed.
func (w *Wallet) Transfer(ctx context.Context, transfers []core.WalletTransfer, opts ...Option) (*Transfer, error) {
	seqno, err := w.seqno.GetSeqno(ctx, w.address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Debug("seqno unavailable, deploying", "address", w.address.ToRaw(), "error", err)
		seqno = 0
	}
	t, err := BuildTransfer(w.variant, w.signer, w.workchain, seqno, w.subWalletID, transfers, opts...)
	if err != nil {
		return nil, err
	}
	payload, err := t.BoC()
	if err != nil {
		return nil, err
	}
	if err := w.sender.SendMessage(ctx, payload); err != nil {
		return nil, err
	}
	slog.Info("transfer sent", "wallet", w.address.ToHuman(true, false), "seqno", seqno, "messages", len(transfers), "hash", hex.EncodeToString(t.Hash[:]))
	return t, nil
}
