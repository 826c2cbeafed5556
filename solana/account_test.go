package shdw_drive

import (
	"crypto/sha256"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func sampleV1(t *testing.T) *StorageAccountV1 {
	return &StorageAccountV1{
		IsStatic:                  false,
		InitCounter:               3,
		DelCounter:                1,
		Immutable:                 false,
		ToBeDeleted:               true,
		DeleteRequestEpoch:        412,
		StorageBytes:              10_000_000,
		StorageAvailable:          7_500_000,
		Owner1:                    newTestKey(t).PublicKey(),
		Owner2:                    newTestKey(t).PublicKey(),
		ShdwPayer:                 newTestKey(t).PublicKey(),
		AccountCounterSeedValue:   2,
		TotalCostOfCurrentStorage: 123456,
		TotalFeesPaid:             789,
		CreationTime:              1650000000,
		CreationEpoch:             300,
		LastFeeEpoch:              410,
		IdentifierValue:           "photos",
	}
}

func sampleV2(t *testing.T) *StorageAccountV2 {
	return &StorageAccountV2{
		Immutable:               true,
		ToBeDeleted:             false,
		DeleteRequestEpoch:      0,
		StorageBytes:            1_000_000_000,
		Owner1:                  newTestKey(t).PublicKey(),
		AccountCounterSeedValue: 7,
		CreationTime:            1670000000,
		CreationEpoch:           380,
		LastFeeEpoch:            380,
		IdentifierValue:         "backups",
	}
}

func TestDiscriminators(t *testing.T) {
	require := require.New(t)

	sum := sha256.Sum256([]byte("account:StorageAccount"))
	require.Equal(sum[:8], Account_StorageAccount[:])

	sum = sha256.Sum256([]byte("account:StorageAccountV2"))
	require.Equal(sum[:8], Account_StorageAccountV2[:])

	sum = sha256.Sum256([]byte("global:increase_storage2"))
	disc := InstructionDiscriminator("increase_storage2")
	require.Equal(sum[:8], disc[:])

	require.NotEqual(Account_StorageAccount, Account_StorageAccountV2)
}

func TestDecodeStorageAccountV1(t *testing.T) {
	require := require.New(t)

	want := sampleV1(t)
	got, err := DecodeStorageAccount(encodeStorageAccountV1(t, want))
	require.NoError(err)
	require.Equal(StorageAccountV1Version, got.Version())

	v1, ok := got.(*StorageAccountV1)
	require.True(ok)
	require.Equal(want, v1)

	require.Equal([]solana.PublicKey{want.Owner1, want.Owner2}, got.Owners())
	require.Equal(uint64(10_000_000), got.Storage())
	used, ok := got.Used()
	require.True(ok)
	require.Equal(uint64(2_500_000), used)
	require.False(got.IsImmutable())
	require.True(got.IsToBeDeleted())
	require.Equal(uint32(2), got.AccountCounterSeed())
	require.Equal("photos", got.Identifier())
}

func TestDecodeStorageAccountV2(t *testing.T) {
	require := require.New(t)

	want := sampleV2(t)
	got, err := DecodeStorageAccount(encodeStorageAccountV2(t, want))
	require.NoError(err)
	require.Equal(StorageAccountV2Version, got.Version())

	v2, ok := got.(*StorageAccountV2)
	require.True(ok)
	require.Equal(want, v2)

	require.Equal([]solana.PublicKey{want.Owner1}, got.Owners())
	_, ok = got.Used()
	require.False(ok)
	require.True(got.IsImmutable())
}

func TestDecodeStorageAccountAllowsTrailingBytes(t *testing.T) {
	data := append(encodeStorageAccountV2(t, sampleV2(t)), make([]byte, 64)...)
	_, err := DecodeStorageAccount(data)
	require.NoError(t, err)
}

func TestV1OwnersSkipsEmptySecondOwner(t *testing.T) {
	require := require.New(t)

	acct := sampleV1(t)
	acct.Owner2 = solana.PublicKey{}
	require.Equal([]solana.PublicKey{acct.Owner1}, acct.Owners())

	acct.Owner2 = acct.Owner1
	require.Len(acct.Owners(), 1)
}

func TestDecodeStorageAccountErrors(t *testing.T) {
	full := encodeStorageAccountV1(t, sampleV1(t))

	badBool := append([]byte{}, full...)
	badBool[8] = 2

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short discriminator", []byte{1, 2, 3}},
		{"unknown discriminator", append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, full[8:]...)},
		{"user info discriminator", encodeUserInfo(t, &UserInfo{AccountCounter: 1})},
		{"truncated body", full[:50]},
		{"string overruns data", full[:len(full)-2]},
		{"invalid bool", badBool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStorageAccount(tt.data)
			require.ErrorIs(t, err, ErrUnknownAccountVersion)
		})
	}
}

func TestOwnerOffsetsMatchLayouts(t *testing.T) {
	require := require.New(t)

	v1 := sampleV1(t)
	data := encodeStorageAccountV1(t, v1)
	require.Equal(v1.Owner1.Bytes(), data[storageAccountV1OwnerOffset:storageAccountV1OwnerOffset+32])

	v2 := sampleV2(t)
	data = encodeStorageAccountV2(t, v2)
	require.Equal(v2.Owner1.Bytes(), data[storageAccountV2OwnerOffset:storageAccountV2OwnerOffset+32])
}

func TestParseUserInfo(t *testing.T) {
	require := require.New(t)

	want := &UserInfo{AccountCounter: 4, DelCounter: 1, AgreedToTos: true}
	got, err := ParseAccount_UserInfo(encodeUserInfo(t, want))
	require.NoError(err)
	require.Equal(want, got)

	_, err = ParseAccount_UserInfo(encodeStorageAccountV2(t, sampleV2(t)))
	require.Error(err)

	_, err = ParseAccount_UserInfo([]byte{1})
	require.Error(err)
}

func TestParseStorageAccountVersion(t *testing.T) {
	require := require.New(t)

	for input, want := range map[string]StorageAccountVersion{
		"v1": StorageAccountV1Version,
		"1":  StorageAccountV1Version,
		"V2": StorageAccountV2Version,
		" 2": StorageAccountV2Version,
	} {
		got, err := ParseStorageAccountVersion(input)
		require.NoError(err, input)
		require.Equal(want, got, input)
	}

	_, err := ParseStorageAccountVersion("v3")
	require.ErrorIs(err, ErrUnknownAccountVersion)
	require.Equal("v2", StorageAccountV2Version.String())
}
