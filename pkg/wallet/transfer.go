package wallet

import (
	"fmt"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"golang.org/x/crypto/ed25519"
	"math/rand/v2"
	"time"
)

const (
	// MaxTransfers is the largest batch any wallet contract accepts.
	MaxTransfers       = 254
	defaultSubWalletID = 698983191
	DefaultTTL         = time.Minute
)

// Signer produces an Ed25519 signature over a body hash.
type Signer interface {
	PublicKey() ed25519.PublicKey
	Sign(hash []byte) ([]byte, error)
}

type KeySigner struct {
	key ed25519.PrivateKey
}

func NewKeySigner(key ed25519.PrivateKey) (*KeySigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key of %d bytes", core.ErrValidation, len(key))
	}
	return &KeySigner{key: key}, nil
}

func (s *KeySigner) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *KeySigner) Sign(hash []byte) ([]byte, error) {
	return ed25519.Sign(s.key, hash), nil
}

type options struct {
	now        func() time.Time
	ttl        time.Duration
	validUntil time.Time
	queryID    *uint64
}

type Option func(*options)

// WithValidUntil sets the moment after which the contract rejects the message.
func WithValidUntil(t time.Time) Option {
	return func(o *options) { o.validUntil = t }
}

func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithQueryID overrides the random highload query id.
func WithQueryID(id uint64) Option {
	return func(o *options) { o.queryID = &id }
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func (o *options) deadline() time.Time {
	if !o.validUntil.IsZero() {
		return o.validUntil
	}
	return o.now().Add(o.ttl)
}

// Transfer is a signed external message ready for submission.
type Transfer struct {
	Message   *cell.Cell
	Body      *cell.Cell
	Address   core.Address
	Hash      [32]byte
	StateInit *core.StateInit
}

func (t *Transfer) BoC() ([]byte, error) {
	return t.Message.ToBoc()
}

// BuildTransfer assembles, signs and wraps a batch of outgoing messages.
// The deploy state init is attached when seqno is zero.
func BuildTransfer(v Variant, signer Signer, workchain int32, seqno, subWalletID uint32, transfers []core.WalletTransfer, opts ...Option) (*Transfer, error) {
	if err := v.valid(); err != nil {
		return nil, err
	}
	if len(transfers) == 0 || len(transfers) > MaxTransfers {
		return nil, fmt.Errorf("%w: batch of %d transfers, expected 1..%d", core.ErrValidation, len(transfers), MaxTransfers)
	}
	if len(transfers) > v.Capacity() {
		return nil, fmt.Errorf("%w: %v carries at most %d transfers, got %d", core.ErrValidation, v, v.Capacity(), len(transfers))
	}
	o := options{now: time.Now, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	init, err := v.StateInit(signer.PublicKey(), subWalletID)
	if err != nil {
		return nil, err
	}
	address, err := init.Address(workchain)
	if err != nil {
		return nil, err
	}
	messages := make([]*cell.Cell, 0, len(transfers))
	for i, t := range transfers {
		msg, err := internalMessage(t)
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		messages = append(messages, msg)
	}
	unsigned, err := unsignedBody(v, seqno, subWalletID, transfers, messages, &o)
	if err != nil {
		return nil, err
	}
	body, err := sign(signer, unsigned)
	if err != nil {
		return nil, err
	}
	if seqno != 0 {
		init = nil
	}
	msg, err := externalMessage(address, init, body)
	if err != nil {
		return nil, err
	}
	return &Transfer{
		Message:   msg,
		Body:      body,
		Address:   address,
		Hash:      msg.Hash(),
		StateInit: init,
	}, nil
}

func mode(t core.WalletTransfer) uint64 {
	if t.Mode == 0 {
		return uint64(core.DefaultSendMode)
	}
	return uint64(t.Mode)
}

func unsignedBody(v Variant, seqno, subWalletID uint32, transfers []core.WalletTransfer, messages []*cell.Cell, o *options) (*cell.Cell, error) {
	b := cell.NewBuilder().StoreUint(uint64(subWalletID), 32)
	if v == HighloadV2 {
		queryID := uint64(o.deadline().Unix())<<32 | uint64(rand.Uint32())
		if o.queryID != nil {
			queryID = *o.queryID
		}
		dict := cell.NewDict(16)
		for i, msg := range messages {
			item, err := cell.NewBuilder().StoreUint(mode(transfers[i]), 8).StoreRef(msg).EndCell()
			if err != nil {
				return nil, err
			}
			if err := dict.Set(uint64(i), item); err != nil {
				return nil, err
			}
		}
		return dict.StoreTo(b.StoreUint(queryID, 64)).EndCell()
	}
	b.StoreUint(uint64(o.deadline().Unix()), 32).StoreUint(uint64(seqno), 32)
	if v == V4R2 {
		// simple send op
		b.StoreUint(0, 8)
	}
	for i, msg := range messages {
		b.StoreUint(mode(transfers[i]), 8).StoreRef(msg)
	}
	return b.EndCell()
}

func sign(signer Signer, unsigned *cell.Cell) (*cell.Cell, error) {
	hash := unsigned.Hash()
	signature, err := signer.Sign(hash[:])
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}
	if len(signature) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature of %d bytes", core.ErrValidation, len(signature))
	}
	return cell.NewBuilder().StoreBytes(signature).StoreSlice(unsigned.BeginParse()).EndCell()
}

func storeInit(b *cell.Builder, init *core.StateInit) (*cell.Builder, error) {
	if init == nil {
		return b.StoreBit(false), nil
	}
	c, err := init.ToCell()
	if err != nil {
		return nil, err
	}
	return b.StoreBit(true).StoreBit(true).StoreRef(c), nil
}

// internalMessage builds a MessageRelaxed with an empty source.
func internalMessage(t core.WalletTransfer) (*cell.Cell, error) {
	b := cell.NewBuilder().
		StoreBit(false).
		StoreBit(true). // ihr disabled
		StoreBit(t.Bounceable).
		StoreBit(false).
		StoreUint(0, 2)
	core.StoreAddress(b, &t.Destination).
		StoreGrams(t.Amount).
		StoreBit(false).
		StoreGrams(0).
		StoreGrams(0).
		StoreUint(0, 64).
		StoreUint(0, 32)
	b, err := storeInit(b, t.Init)
	if err != nil {
		return nil, err
	}
	if t.Body == nil {
		b.StoreBit(false)
	} else {
		b.StoreBit(true).StoreRef(t.Body)
	}
	return b.EndCell()
}

func externalMessage(dest core.Address, init *core.StateInit, body *cell.Cell) (*cell.Cell, error) {
	b := cell.NewBuilder().StoreUint(0b10, 2).StoreUint(0, 2)
	core.StoreAddress(b, &dest).StoreGrams(0)
	b, err := storeInit(b, init)
	if err != nil {
		return nil, err
	}
	return b.StoreBit(true).StoreRef(body).EndCell()
}
