package shdw_drive

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestStorageAccountPDA(t *testing.T) {
	require := require.New(t)
	owner := newTestKey(t).PublicKey()

	got, bump, err := GetStorageAccountPDA(DefaultProgramID, owner, 3)
	require.NoError(err)

	want, wantBump, err := solana.FindProgramAddress(
		[][]byte{[]byte("storage-account"), owner.Bytes(), {3, 0, 0, 0}},
		DefaultProgramID,
	)
	require.NoError(err)
	require.Equal(want, got)
	require.Equal(wantBump, bump)

	again, _, err := GetStorageAccountPDA(DefaultProgramID, owner, 3)
	require.NoError(err)
	require.Equal(got, again)

	next, _, err := GetStorageAccountPDA(DefaultProgramID, owner, 4)
	require.NoError(err)
	require.NotEqual(got, next)
}

func TestKnownPDAs(t *testing.T) {
	owner := DefaultUploader

	tests := []struct {
		name     string
		derive   func() (solana.PublicKey, uint8, error)
		want     string
		wantBump uint8
	}{
		{
			"storage config",
			func() (solana.PublicKey, uint8, error) { return GetStorageConfigPDA(DefaultProgramID) },
			"6JEpey8vWjmiDVZfgAM1TeYBD5Xm2kXMsPqP5GGuFVXW", 254,
		},
		{
			"user info",
			func() (solana.PublicKey, uint8, error) { return GetUserInfoPDA(DefaultProgramID, owner) },
			"9bekzbB6zGpNjgDMv8cRJqZr2Tf47sQbbTKhJ8cZosry", 254,
		},
		{
			"first storage account",
			func() (solana.PublicKey, uint8, error) { return GetStorageAccountPDA(DefaultProgramID, owner, 0) },
			"GqBu2VgHnmnkywPeHGHC67YvJNa6kfwFRSn6GLS3iMNQ", 255,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bump, err := tt.derive()
			require.NoError(t, err)
			require.Equal(t, solana.MustPublicKeyFromBase58(tt.want), got)
			require.Equal(t, tt.wantBump, bump)
		})
	}
}

func TestDerivedPDAs(t *testing.T) {
	require := require.New(t)
	owner := newTestKey(t).PublicKey()
	storageAccount := newTestKey(t).PublicKey()

	tests := []struct {
		name   string
		derive func() (solana.PublicKey, uint8, error)
		seeds  [][]byte
	}{
		{
			"storage config",
			func() (solana.PublicKey, uint8, error) { return GetStorageConfigPDA(DefaultProgramID) },
			[][]byte{[]byte("storage-config")},
		},
		{
			"user info",
			func() (solana.PublicKey, uint8, error) { return GetUserInfoPDA(DefaultProgramID, owner) },
			[][]byte{[]byte("user-info"), owner.Bytes()},
		},
		{
			"stake account",
			func() (solana.PublicKey, uint8, error) { return GetStakeAccountPDA(DefaultProgramID, storageAccount) },
			[][]byte{[]byte("stake-account"), storageAccount.Bytes()},
		},
		{
			"unstake info",
			func() (solana.PublicKey, uint8, error) { return GetUnstakeInfoPDA(DefaultProgramID, storageAccount) },
			[][]byte{[]byte("unstake-info"), storageAccount.Bytes()},
		},
		{
			"unstake account",
			func() (solana.PublicKey, uint8, error) { return GetUnstakeAccountPDA(DefaultProgramID, storageAccount) },
			[][]byte{[]byte("unstake-account"), storageAccount.Bytes()},
		},
		{
			"file",
			func() (solana.PublicKey, uint8, error) { return GetFilePDA(DefaultProgramID, storageAccount, 258) },
			[][]byte{storageAccount.Bytes(), {2, 1, 0, 0}},
		},
	}
	for _, tt := range tests {
		got, _, err := tt.derive()
		require.NoError(err, tt.name)
		want, _, err := solana.FindProgramAddress(tt.seeds, DefaultProgramID)
		require.NoError(err, tt.name)
		require.Equal(want, got, tt.name)
	}
}

func TestDeriveCommon(t *testing.T) {
	require := require.New(t)
	cfg := DefaultConfig()
	owner := newTestKey(t).PublicKey()
	storageAccount := newTestKey(t).PublicKey()

	addrs, err := deriveCommon(cfg, owner, storageAccount)
	require.NoError(err)

	ownerATA, _, err := solana.FindAssociatedTokenAddress(owner, cfg.TokenMint)
	require.NoError(err)
	require.Equal(ownerATA, addrs.ownerATA)

	emissionsATA, _, err := solana.FindAssociatedTokenAddress(cfg.EmissionsWallet, cfg.TokenMint)
	require.NoError(err)
	require.Equal(emissionsATA, addrs.emissionsATA)
}
