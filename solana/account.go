package shdw_drive

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// StorageAccountVersion tags the on-chain layout of a storage account.
type StorageAccountVersion uint8

const (
	StorageAccountV1Version StorageAccountVersion = iota + 1
	StorageAccountV2Version
)

func (v StorageAccountVersion) String() string {
	switch v {
	case StorageAccountV1Version:
		return "v1"
	case StorageAccountV2Version:
		return "v2"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// ParseStorageAccountVersion parses "v1" or "v2".
func ParseStorageAccountVersion(s string) (StorageAccountVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "1":
		return StorageAccountV1Version, nil
	case "v2", "2":
		return StorageAccountV2Version, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccountVersion, s)
	}
}

// Anchor account discriminators.
var (
	Account_StorageAccount   = anchorDiscriminator("account", "StorageAccount")
	Account_StorageAccountV2 = anchorDiscriminator("account", "StorageAccountV2")
	Account_UserInfo         = anchorDiscriminator("account", "UserInfo")
)

// Byte offsets of owner_1 inside each layout, used for program account filters.
const (
	storageAccountV1OwnerOffset = 39
	storageAccountV2OwnerOffset = 22
)

func anchorDiscriminator(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}

// StorageAccount is the decoded form of an on-chain storage account.
// The concrete type is either *StorageAccountV1 or *StorageAccountV2.
type StorageAccount interface {
	Version() StorageAccountVersion
	Owners() []solana.PublicKey
	// Storage is the total number of reserved bytes.
	Storage() uint64
	// Used returns the bytes in use when the layout records it.
	Used() (uint64, bool)
	IsImmutable() bool
	IsToBeDeleted() bool
	AccountCounterSeed() uint32
	Identifier() string

	sealed()
}

// StorageAccountV1 is the first account layout.
type StorageAccountV1 struct {
	IsStatic                  bool
	InitCounter               uint32
	DelCounter                uint32
	Immutable                 bool
	ToBeDeleted               bool
	DeleteRequestEpoch        uint32
	StorageBytes              uint64
	StorageAvailable          uint64
	Owner1                    solana.PublicKey
	Owner2                    solana.PublicKey
	ShdwPayer                 solana.PublicKey
	AccountCounterSeedValue   uint32
	TotalCostOfCurrentStorage uint64
	TotalFeesPaid             uint64
	CreationTime              uint32
	CreationEpoch             uint32
	LastFeeEpoch              uint32
	IdentifierValue           string
}

func (a *StorageAccountV1) Version() StorageAccountVersion { return StorageAccountV1Version }
func (a *StorageAccountV1) Storage() uint64                { return a.StorageBytes }
func (a *StorageAccountV1) IsImmutable() bool              { return a.Immutable }
func (a *StorageAccountV1) IsToBeDeleted() bool            { return a.ToBeDeleted }
func (a *StorageAccountV1) AccountCounterSeed() uint32     { return a.AccountCounterSeedValue }
func (a *StorageAccountV1) Identifier() string             { return a.IdentifierValue }
func (a *StorageAccountV1) sealed()                        {}

// Owners returns owner_1 followed by owner_2 when one is set.
func (a *StorageAccountV1) Owners() []solana.PublicKey {
	owners := []solana.PublicKey{a.Owner1}
	if !a.Owner2.IsZero() && !a.Owner2.Equals(a.Owner1) {
		owners = append(owners, a.Owner2)
	}
	return owners
}

func (a *StorageAccountV1) Used() (uint64, bool) {
	if a.StorageAvailable > a.StorageBytes {
		return 0, true
	}
	return a.StorageBytes - a.StorageAvailable, true
}

// StorageAccountV2 is the slimmer layout; usage is tracked off-chain.
type StorageAccountV2 struct {
	Immutable               bool
	ToBeDeleted             bool
	DeleteRequestEpoch      uint32
	StorageBytes            uint64
	Owner1                  solana.PublicKey
	AccountCounterSeedValue uint32
	CreationTime            uint32
	CreationEpoch           uint32
	LastFeeEpoch            uint32
	IdentifierValue         string
}

func (a *StorageAccountV2) Version() StorageAccountVersion { return StorageAccountV2Version }
func (a *StorageAccountV2) Owners() []solana.PublicKey     { return []solana.PublicKey{a.Owner1} }
func (a *StorageAccountV2) Storage() uint64                { return a.StorageBytes }
func (a *StorageAccountV2) Used() (uint64, bool)           { return 0, false }
func (a *StorageAccountV2) IsImmutable() bool              { return a.Immutable }
func (a *StorageAccountV2) IsToBeDeleted() bool            { return a.ToBeDeleted }
func (a *StorageAccountV2) AccountCounterSeed() uint32     { return a.AccountCounterSeedValue }
func (a *StorageAccountV2) Identifier() string             { return a.IdentifierValue }
func (a *StorageAccountV2) sealed()                        {}

// UserInfo is the per-owner side table created with the first storage account.
type UserInfo struct {
	AccountCounter  uint32
	DelCounter      uint32
	AgreedToTos     bool
	LifetimeBadCsam bool
}

// DecodeStorageAccount picks the layout from the discriminator and decodes it.
// Unrecognized or truncated data fails with ErrUnknownAccountVersion.
func DecodeStorageAccount(data []byte) (StorageAccount, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: account data is %d bytes", ErrUnknownAccountVersion, len(data))
	}

	var disc [8]byte
	copy(disc[:], data[:8])
	decoder := bin.NewBorshDecoder(data[8:])

	switch disc {
	case Account_StorageAccount:
		acct := new(StorageAccountV1)
		if err := acct.UnmarshalWithDecoder(decoder); err != nil {
			return nil, fmt.Errorf("%w: malformed v1 layout: %v", ErrUnknownAccountVersion, err)
		}
		return acct, nil
	case Account_StorageAccountV2:
		acct := new(StorageAccountV2)
		if err := acct.UnmarshalWithDecoder(decoder); err != nil {
			return nil, fmt.Errorf("%w: malformed v2 layout: %v", ErrUnknownAccountVersion, err)
		}
		return acct, nil
	default:
		return nil, fmt.Errorf("%w: discriminator %x", ErrUnknownAccountVersion, disc)
	}
}

// ParseAccount_UserInfo decodes a user info account.
func ParseAccount_UserInfo(data []byte) (*UserInfo, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("user info account data too short: %d bytes", len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	if disc != Account_UserInfo {
		return nil, fmt.Errorf("unexpected user info discriminator %x", disc)
	}

	d := &accountReader{dec: bin.NewBorshDecoder(data[8:])}
	info := &UserInfo{
		AccountCounter:  d.u32(),
		DelCounter:      d.u32(),
		AgreedToTos:     d.boolean(),
		LifetimeBadCsam: d.boolean(),
	}
	if d.err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", d.err)
	}
	return info, nil
}

func (a *StorageAccountV1) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	d := &accountReader{dec: decoder}
	a.IsStatic = d.boolean()
	a.InitCounter = d.u32()
	a.DelCounter = d.u32()
	a.Immutable = d.boolean()
	a.ToBeDeleted = d.boolean()
	a.DeleteRequestEpoch = d.u32()
	a.StorageBytes = d.u64()
	a.StorageAvailable = d.u64()
	a.Owner1 = d.pubkey()
	a.Owner2 = d.pubkey()
	a.ShdwPayer = d.pubkey()
	a.AccountCounterSeedValue = d.u32()
	a.TotalCostOfCurrentStorage = d.u64()
	a.TotalFeesPaid = d.u64()
	a.CreationTime = d.u32()
	a.CreationEpoch = d.u32()
	a.LastFeeEpoch = d.u32()
	a.IdentifierValue = d.str()
	return d.err
}

func (a *StorageAccountV2) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	d := &accountReader{dec: decoder}
	a.Immutable = d.boolean()
	a.ToBeDeleted = d.boolean()
	a.DeleteRequestEpoch = d.u32()
	a.StorageBytes = d.u64()
	a.Owner1 = d.pubkey()
	a.AccountCounterSeedValue = d.u32()
	a.CreationTime = d.u32()
	a.CreationEpoch = d.u32()
	a.LastFeeEpoch = d.u32()
	a.IdentifierValue = d.str()
	return d.err
}

// accountReader keeps the first decode error so field lists read top to bottom.
type accountReader struct {
	dec *bin.Decoder
	err error
}

func (r *accountReader) boolean() bool {
	if r.err != nil {
		return false
	}
	b, err := r.dec.ReadNBytes(1)
	if err != nil {
		r.err = err
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		r.err = fmt.Errorf("invalid bool byte %d", b[0])
		return false
	}
}

func (r *accountReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint32(binary.LittleEndian)
	r.err = err
	return v
}

func (r *accountReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(binary.LittleEndian)
	r.err = err
	return v
}

func (r *accountReader) pubkey() solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	b, err := r.dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		r.err = err
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

func (r *accountReader) str() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if int(n) > r.dec.Remaining() {
		r.err = fmt.Errorf("string length %d exceeds remaining %d bytes", n, r.dec.Remaining())
		return ""
	}
	b, err := r.dec.ReadNBytes(int(n))
	if err != nil {
		r.err = err
		return ""
	}
	return string(b)
}
