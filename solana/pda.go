package shdw_drive

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Seeds used by the storage program.
var (
	seedStorageConfig  = []byte("storage-config")
	seedUserInfo       = []byte("user-info")
	seedStorageAccount = []byte("storage-account")
	seedStakeAccount   = []byte("stake-account")
	seedUnstakeInfo    = []byte("unstake-info")
	seedUnstakeAccount = []byte("unstake-account")
)

// GetStorageConfigPDA returns the PDA for the global storage config account.
func GetStorageConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			seedStorageConfig,
		},
		programID,
	)
}

// GetUserInfoPDA returns the PDA for an owner's user info account.
func GetUserInfoPDA(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			seedUserInfo,
			owner.Bytes(),
		},
		programID,
	)
}

// GetStorageAccountPDA returns the PDA for the seed-th storage account of owner.
func GetStorageAccountPDA(programID, owner solana.PublicKey, seed uint32) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			seedStorageAccount,
			owner.Bytes(),
			binary.LittleEndian.AppendUint32(nil, seed),
		},
		programID,
	)
}

// GetStakeAccountPDA returns the PDA holding the stake of a storage account.
func GetStakeAccountPDA(programID, storageAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			seedStakeAccount,
			storageAccount.Bytes(),
		},
		programID,
	)
}

// GetUnstakeInfoPDA returns the PDA tracking a pending unstake.
func GetUnstakeInfoPDA(programID, storageAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			seedUnstakeInfo,
			storageAccount.Bytes(),
		},
		programID,
	)
}

// GetUnstakeAccountPDA returns the token account receiving unstaked funds.
func GetUnstakeAccountPDA(programID, storageAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			seedUnstakeAccount,
			storageAccount.Bytes(),
		},
		programID,
	)
}

// GetFilePDA returns the v1 file account for the given file seed.
func GetFilePDA(programID, storageAccount solana.PublicKey, fileSeed uint32) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			storageAccount.Bytes(),
			binary.LittleEndian.AppendUint32(nil, fileSeed),
		},
		programID,
	)
}

// derivedAddresses is the set of addresses shared by most instructions.
type derivedAddresses struct {
	storageConfig solana.PublicKey
	stakeAccount  solana.PublicKey
	ownerATA      solana.PublicKey
	emissionsATA  solana.PublicKey
}

func deriveCommon(cfg Config, owner, storageAccount solana.PublicKey) (*derivedAddresses, error) {
	storageConfig, _, err := GetStorageConfigPDA(cfg.ProgramID)
	if err != nil {
		return nil, err
	}
	stakeAccount, _, err := GetStakeAccountPDA(cfg.ProgramID, storageAccount)
	if err != nil {
		return nil, err
	}
	ownerATA, _, err := solana.FindAssociatedTokenAddress(owner, cfg.TokenMint)
	if err != nil {
		return nil, err
	}
	emissionsATA, _, err := solana.FindAssociatedTokenAddress(cfg.EmissionsWallet, cfg.TokenMint)
	if err != nil {
		return nil, err
	}
	return &derivedAddresses{
		storageConfig: storageConfig,
		stakeAccount:  stakeAccount,
		ownerATA:      ownerATA,
		emissionsATA:  emissionsATA,
	}, nil
}
