package core

import (
	"encoding/base64"
	"fmt"
	"github.com/tonkeeper/tongo/ton"
	"github.com/txsociety/tonkit/pkg/cell"
	"strconv"
	"strings"
)

const (
	bounceableTag    byte = 0x11
	nonBounceableTag byte = 0x51
	testnetFlag      byte = 0x80
)

// Address identifies an account by workchain and 256-bit id.
type Address struct {
	Workchain int32
	ID        ton.Bits256
}

type AddressFlags struct {
	Bounceable bool
	Testnet    bool
	URLSafe    bool
}

// ParseAddress accepts the raw "workchain:hex" form and both base64 variants of the user-friendly form.
func ParseAddress(s string) (Address, error) {
	a, _, err := ParseAddressWithFlags(s)
	return a, err
}

func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func ParseAddressWithFlags(s string) (Address, AddressFlags, error) {
	if strings.Contains(s, ":") {
		a, err := parseRawAddress(s)
		return a, AddressFlags{Bounceable: true}, err
	}
	return parseFriendlyAddress(s)
}

func parseRawAddress(s string) (Address, error) {
	wc, id, _ := strings.Cut(s, ":")
	if len(id) != 64 {
		return Address{}, fmt.Errorf("%w: invalid account id %q", ErrValidation, id)
	}
	workchain, err := strconv.ParseInt(wc, 10, 8)
	if err != nil {
		return Address{}, fmt.Errorf("%w: invalid workchain %q", ErrValidation, wc)
	}
	accountID, err := ton.AccountIDFromRaw(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	accountID.Workchain = int32(workchain)
	return AddressFromAccountID(accountID), nil
}

func parseFriendlyAddress(s string) (Address, AddressFlags, error) {
	if len(s) != 48 {
		return Address{}, AddressFlags{}, fmt.Errorf("%w: invalid address length %d", ErrValidation, len(s))
	}
	accountID, err := ton.AccountIDFromBase64Url(s)
	if err != nil {
		return Address{}, AddressFlags{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	flags := AddressFlags{URLSafe: !strings.ContainsAny(s, "+/")}
	// the first four characters hold the tag byte, the checksum is already verified
	head, err := base64.URLEncoding.DecodeString(toURLSafe.Replace(s[:4]))
	if err != nil {
		return Address{}, AddressFlags{}, fmt.Errorf("%w: invalid address encoding", ErrValidation)
	}
	tag := head[0]
	if tag&testnetFlag != 0 {
		flags.Testnet = true
		tag &^= testnetFlag
	}
	switch tag {
	case bounceableTag:
		flags.Bounceable = true
	case nonBounceableTag:
	default:
		return Address{}, AddressFlags{}, fmt.Errorf("%w: unknown address tag %#x", ErrValidation, head[0])
	}
	return AddressFromAccountID(accountID), flags, nil
}

var (
	toURLSafe = strings.NewReplacer("+", "-", "/", "_")
	toStd     = strings.NewReplacer("-", "+", "_", "/")
)

func (a Address) ToRaw() string {
	return a.AccountID().ToRaw()
}

// ToHuman returns the url-safe user-friendly form.
func (a Address) ToHuman(bounceable, testnet bool) string {
	return a.AccountID().ToHuman(bounceable, testnet)
}

func (a Address) Format(flags AddressFlags) string {
	s := a.ToHuman(flags.Bounceable, flags.Testnet)
	if flags.URLSafe {
		return s
	}
	return toStd.Replace(s)
}

func (a Address) String() string {
	return a.ToHuman(true, false)
}

func (a Address) AccountID() ton.AccountID {
	return ton.AccountID{Workchain: a.Workchain, Address: a.ID}
}

func AddressFromAccountID(a ton.AccountID) Address {
	return Address{Workchain: a.Workchain, ID: a.Address}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.ToRaw()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	parsed, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// StoreAddress writes addr_std, or addr_none when a is nil.
func StoreAddress(b *cell.Builder, a *Address) *cell.Builder {
	if a == nil {
		return b.StoreUint(0, 2)
	}
	return b.StoreUint(0b100, 3).StoreInt(int64(a.Workchain), 8).StoreBytes(a.ID[:])
}

// LoadAddress reads a MsgAddress. addr_none and external addresses yield nil.
func LoadAddress(s *cell.Slice) (*Address, error) {
	tag, err := s.LoadUint(2)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0b00:
		return nil, nil
	case 0b01:
		l, err := s.LoadUint(9)
		if err != nil {
			return nil, err
		}
		return nil, s.SkipBits(int(l))
	case 0b10:
		anycast, err := s.LoadBit()
		if err != nil {
			return nil, err
		}
		if anycast {
			return nil, fmt.Errorf("%w: anycast addresses are not supported", cell.ErrBadLayout)
		}
		wc, err := s.LoadInt(8)
		if err != nil {
			return nil, err
		}
		id, err := s.LoadBytes(32)
		if err != nil {
			return nil, err
		}
		a := Address{Workchain: int32(wc)}
		copy(a.ID[:], id)
		return &a, nil
	default:
		return nil, fmt.Errorf("%w: addr_var is not supported", cell.ErrBadLayout)
	}
}
