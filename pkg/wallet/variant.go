package wallet

import (
	"fmt"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"golang.org/x/crypto/ed25519"
	"strings"
	"sync"
)

// Variant is a wallet contract revision. The set is closed: V3R2, V4R2 and HighloadV2.
type Variant uint8

const (
	V3R2 Variant = iota + 1
	V4R2
	HighloadV2
)

const (
	seqnoCapacity    = 4
	highloadCapacity = MaxTransfers
)

const (
	v3r2Code       = "te6cckEBAQEAcQAA3v8AIN0gggFMl7ohggEznLqxn3Gw7UTQ0x/THzHXC//jBOCk8mCDCNcYINMf0x/TH/gjE7vyY+1E0NMf0x/T/9FRMrryoVFEuvKiBPkBVBBV+RDyo/gAkyDXSpbTB9QC+wDo0QGkyMsfyx/L/8ntVBC9ba0="
	v4r2Code       = "te6cckECFAEAAtQAART/APSkE/S88sgLAQIBIAIDAgFIBAUE+PKDCNcYINMf0x/THwL4I7vyZO1E0NMf0x/T//QE0VFDuvKhUVG68qIF+QFUEGT5EPKj+AAkpMjLH1JAyx9SMMv/UhD0AMntVPgPAdMHIcAAn2xRkyDXSpbTB9QC+wDoMOAhwAHjACHAAuMAAcADkTDjDQOkyMsfEssfy/8QERITAubQAdDTAyFxsJJfBOAi10nBIJJfBOAC0x8hghBwbHVnvSKCEGRzdHK9sJJfBeAD+kAwIPpEAcjKB8v/ydDtRNCBAUDXIfQEMFyBAQj0Cm+hMbOSXwfgBdM/yCWCEHBsdWe6kjgw4w0DghBkc3RyupJfBuMNBgcCASAICQB4AfoA9AQw+CdvIjBQCqEhvvLgUIIQcGx1Z4MesXCAGFAEywUmzxZY+gIZ9ADLaRfLH1Jgyz8gyYBA+wAGAIpQBIEBCPRZMO1E0IEBQNcgyAHPFvQAye1UAXKwjiOCEGRzdHKDHrFwgBhQBcsFUAPPFiP6AhPLassfyz/JgED7AJJfA+ICASAKCwBZvSQrb2omhAgKBrkPoCGEcNQICEekk30pkQzmkD6f+YN4EoAbeBAUiYcVnzGEAgFYDA0AEbjJftRNDXCx+AA9sp37UTQgQFA1yH0BDACyMoHy//J0AGBAQj0Cm+hMYAIBIA4PABmtznaiaEAga5Drhf/AABmvHfaiaEAQa5DrhY/AAG7SB/oA1NQi+QAFyMoHFcv/ydB3dIAYyMsFywIizxZQBfoCFMtrEszMyXP7AMhAFIEBCPRR8qcCAHCBAQjXGPoA0z/IVCBHgQEI9FHyp4IQbm90ZXB0gBjIywXLAlAGzxZQBPoCFMtqEssfyz/Jc/sAAgBsgQEI1xj6ANM/MFIkgQEI9Fnyp4IQZHN0cnB0gBjIywXLAlAFzxZQA/oCE8tqyx8Syz/Jc/sAAAr0AMntVGliJeU="
	highloadV2Code = "B5EE9C724101090100E5000114FF00F4A413F4BCF2C80B010201200203020148040501EAF28308D71820D31FD33FF823AA1F5320B9F263ED44D0D31FD33FD3FFF404D153608040F40E6FA131F2605173BAF2A207F901541087F910F2A302F404D1F8007F8E16218010F4786FA5209802D307D43001FB009132E201B3E65B8325A1C840348040F4438AE63101C8CB1F13CB3FCBFFF400C9ED54080004D03002012006070017BD9CE76A26869AF98EB85FFC0041BE5F976A268698F98E99FE9FF98FA0268A91040207A0737D098C92DBFC95DD1F140034208040F4966FA56C122094305303B9DE2093333601926C21E2B39F9E545A"
)

var (
	v3r2CodeCell       = sync.OnceValues(func() (*cell.Cell, error) { return cell.FromBocBase64(v3r2Code) })
	v4r2CodeCell       = sync.OnceValues(func() (*cell.Cell, error) { return cell.FromBocBase64(v4r2Code) })
	highloadV2CodeCell = sync.OnceValues(func() (*cell.Cell, error) { return cell.FromBocHex(highloadV2Code) })
)

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "v3r2":
		return V3R2, nil
	case "v4r2":
		return V4R2, nil
	case "highload_v2", "highloadv2":
		return HighloadV2, nil
	}
	return 0, fmt.Errorf("%w: unknown wallet version %q", core.ErrValidation, s)
}

func (v Variant) String() string {
	switch v {
	case V3R2:
		return "v3r2"
	case V4R2:
		return "v4r2"
	case HighloadV2:
		return "highload_v2"
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

func (v Variant) valid() error {
	switch v {
	case V3R2, V4R2, HighloadV2:
		return nil
	}
	return fmt.Errorf("%w: unknown wallet %v", core.ErrValidation, v)
}

// Code returns the deployed contract code.
func (v Variant) Code() (*cell.Cell, error) {
	switch v {
	case V3R2:
		return v3r2CodeCell()
	case V4R2:
		return v4r2CodeCell()
	case HighloadV2:
		return highloadV2CodeCell()
	}
	return nil, v.valid()
}

// Capacity is the maximum number of messages one external message may carry.
func (v Variant) Capacity() int {
	if v == HighloadV2 {
		return highloadCapacity
	}
	return seqnoCapacity
}

// InitialData returns the storage of a freshly deployed wallet.
func (v Variant) InitialData(key ed25519.PublicKey, subWalletID uint32) (*cell.Cell, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key of %d bytes", core.ErrValidation, len(key))
	}
	b := cell.NewBuilder()
	switch v {
	case V3R2:
		b.StoreUint(0, 32).StoreUint(uint64(subWalletID), 32).StoreBytes(key)
	case V4R2:
		// empty plugin dict
		b.StoreUint(0, 32).StoreUint(uint64(subWalletID), 32).StoreBytes(key).StoreBit(false)
	case HighloadV2:
		// last_cleaned then an empty old_queries dict
		b.StoreUint(uint64(subWalletID), 32).StoreUint(0, 64).StoreBytes(key).StoreBit(false)
	default:
		return nil, v.valid()
	}
	return b.EndCell()
}

func (v Variant) StateInit(key ed25519.PublicKey, subWalletID uint32) (*core.StateInit, error) {
	code, err := v.Code()
	if err != nil {
		return nil, err
	}
	data, err := v.InitialData(key, subWalletID)
	if err != nil {
		return nil, err
	}
	return &core.StateInit{Code: code, Data: data}, nil
}

// Address derives the wallet address from its initial state.
func (v Variant) Address(key ed25519.PublicKey, workchain int32, subWalletID uint32) (core.Address, error) {
	init, err := v.StateInit(key, subWalletID)
	if err != nil {
		return core.Address{}, err
	}
	return init.Address(workchain)
}

// DefaultSubWalletID is the subwallet id used by standard wallet apps for the workchain.
func DefaultSubWalletID(workchain int32) uint32 {
	return uint32(int64(defaultSubWalletID) + int64(workchain))
}
