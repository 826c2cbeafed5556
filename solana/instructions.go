package shdw_drive

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// Instruction names as declared by the storage program. V2 variants carry a "2" suffix.
const (
	ixInitializeAccount         = "initialize_account"
	ixInitializeAccount2        = "initialize_account2"
	ixIncreaseStorage           = "increase_storage"
	ixIncreaseStorage2          = "increase_storage2"
	ixIncreaseImmutableStorage  = "increase_immutable_storage"
	ixIncreaseImmutableStorage2 = "increase_immutable_storage2"
	ixDecreaseStorage           = "decrease_storage"
	ixDecreaseStorage2          = "decrease_storage2"
	ixMakeAccountImmutable      = "make_account_immutable"
	ixMakeAccountImmutable2     = "make_account_immutable2"
	ixRequestDeleteAccount      = "request_delete_account"
	ixRequestDeleteAccount2     = "request_delete_account2"
	ixUnmarkDeleteAccount       = "unmark_delete_account"
	ixUnmarkDeleteAccount2      = "unmark_delete_account2"
	ixRequestDeleteFile         = "request_delete_file"
	ixClaimStake                = "claim_stake"
	ixClaimStake2               = "claim_stake2"
)

// InstructionDiscriminator returns the Anchor discriminator for an instruction name.
func InstructionDiscriminator(name string) [8]byte {
	return anchorDiscriminator("global", name)
}

// instructionArgs accumulates the borsh encoded payload after the discriminator.
type instructionArgs struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

func newInstructionArgs(name string) *instructionArgs {
	a := &instructionArgs{}
	a.enc = bin.NewBorshEncoder(&a.buf)
	disc := InstructionDiscriminator(name)
	a.err = a.enc.WriteBytes(disc[:], false)
	return a
}

func (a *instructionArgs) u64(v uint64) *instructionArgs {
	if a.err == nil {
		a.err = a.enc.WriteUint64(v, binary.LittleEndian)
	}
	return a
}

func (a *instructionArgs) str(s string) *instructionArgs {
	if a.err == nil {
		a.err = a.enc.WriteUint32(uint32(len(s)), binary.LittleEndian)
	}
	if a.err == nil {
		a.err = a.enc.WriteBytes([]byte(s), false)
	}
	return a
}

func (a *instructionArgs) optionalPubkey(pk *solana.PublicKey) *instructionArgs {
	if a.err != nil {
		return a
	}
	if pk == nil {
		a.err = a.enc.WriteBool(false)
		return a
	}
	if a.err = a.enc.WriteBool(true); a.err == nil {
		a.err = a.enc.WriteBytes(pk[:], false)
	}
	return a
}

func (a *instructionArgs) bytes() ([]byte, error) {
	if a.err != nil {
		return nil, fmt.Errorf("failed to encode instruction args: %w", a.err)
	}
	return a.buf.Bytes(), nil
}

func newProgramInstruction(cfg Config, accounts []*solana.AccountMeta, args *instructionArgs) (solana.Instruction, error) {
	data, err := args.bytes()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(cfg.ProgramID, accounts, data), nil
}

func writable(pk solana.PublicKey) *solana.AccountMeta { return solana.NewAccountMeta(pk, true, false) }
func readonly(pk solana.PublicKey) *solana.AccountMeta { return solana.NewAccountMeta(pk, false, false) }
func signer(pk solana.PublicKey) *solana.AccountMeta   { return solana.NewAccountMeta(pk, false, true) }
func payer(pk solana.PublicKey) *solana.AccountMeta    { return solana.NewAccountMeta(pk, true, true) }

// CreateStorageAccountParams describes a new storage account.
// Owner2 is only honoured by v1 accounts. Seed is the owner's current account
// counter, 0 when the user info account does not exist yet.
type CreateStorageAccountParams struct {
	Version StorageAccountVersion
	Owner   solana.PublicKey
	Owner2  *solana.PublicKey
	Seed    uint32
	Name    string
	Storage uint64
}

// BuildCreateStorageAccount builds the initialize instruction for the requested version.
// It returns the new storage account address alongside the instruction.
func BuildCreateStorageAccount(cfg Config, p CreateStorageAccountParams) (solana.Instruction, solana.PublicKey, error) {
	if p.Name == "" {
		return nil, solana.PublicKey{}, fmt.Errorf("storage account name is required")
	}
	storageAccount, _, err := GetStorageAccountPDA(cfg.ProgramID, p.Owner, p.Seed)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to get storage account PDA: %w", err)
	}
	userInfo, _, err := GetUserInfoPDA(cfg.ProgramID, p.Owner)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to get user info PDA: %w", err)
	}
	addrs, err := deriveCommon(cfg, p.Owner, storageAccount)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive addresses: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(addrs.storageConfig),
		writable(userInfo),
		writable(storageAccount),
		writable(addrs.stakeAccount),
		readonly(cfg.TokenMint),
		payer(p.Owner),
		signer(cfg.Uploader),
		writable(addrs.ownerATA),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarRentPubkey),
	}

	var args *instructionArgs
	switch p.Version {
	case StorageAccountV1Version:
		args = newInstructionArgs(ixInitializeAccount).str(p.Name).u64(p.Storage).optionalPubkey(p.Owner2)
	case StorageAccountV2Version:
		if p.Owner2 != nil {
			return nil, solana.PublicKey{}, fmt.Errorf("%w: v2 accounts have a single owner", ErrUnsupportedOperation)
		}
		args = newInstructionArgs(ixInitializeAccount2).str(p.Name).u64(p.Storage)
	default:
		return nil, solana.PublicKey{}, fmt.Errorf("%w: %s", ErrUnknownAccountVersion, p.Version)
	}

	ix, err := newProgramInstruction(cfg, accounts, args)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return ix, storageAccount, nil
}

// BuildAddStorage builds the instruction growing a mutable storage account.
func BuildAddStorage(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount, additional uint64) (solana.Instruction, error) {
	var name string
	switch acct := account.(type) {
	case *StorageAccountV1:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: use immutable storage increase", ErrStorageAccountIsImmutable)
		}
		name = ixIncreaseStorage
	case *StorageAccountV2:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: use immutable storage increase", ErrStorageAccountIsImmutable)
		}
		name = ixIncreaseStorage2
	default:
		return nil, ErrUnknownAccountVersion
	}

	owner := account.Owners()[0]
	addrs, err := deriveCommon(cfg, owner, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(addrs.storageConfig),
		writable(storageAccountKey),
		payer(owner),
		writable(addrs.ownerATA),
		writable(addrs.stakeAccount),
		readonly(cfg.TokenMint),
		signer(cfg.Uploader),
		readonly(solana.TokenProgramID),
		readonly(solana.SystemProgramID),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name).u64(additional))
}

// BuildAddImmutableStorage builds the instruction growing an immutable storage account.
// The fee goes to the emissions wallet instead of the stake account.
func BuildAddImmutableStorage(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount, additional uint64) (solana.Instruction, error) {
	var name string
	switch acct := account.(type) {
	case *StorageAccountV1:
		if !acct.Immutable {
			return nil, ErrStorageAccountIsNotImmutable
		}
		name = ixIncreaseImmutableStorage
	case *StorageAccountV2:
		if !acct.Immutable {
			return nil, ErrStorageAccountIsNotImmutable
		}
		name = ixIncreaseImmutableStorage2
	default:
		return nil, ErrUnknownAccountVersion
	}

	owner := account.Owners()[0]
	addrs, err := deriveCommon(cfg, owner, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(addrs.storageConfig),
		writable(storageAccountKey),
		writable(addrs.emissionsATA),
		payer(owner),
		writable(addrs.ownerATA),
		signer(cfg.Uploader),
		readonly(cfg.TokenMint),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name).u64(additional))
}

// BuildReduceStorage builds the instruction shrinking a storage account.
// Released stake moves to the unstake account and is claimable later.
func BuildReduceStorage(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount, remove uint64) (solana.Instruction, error) {
	var name string
	switch acct := account.(type) {
	case *StorageAccountV1:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: cannot reduce storage", ErrStorageAccountIsImmutable)
		}
		if remove > acct.StorageBytes {
			return nil, fmt.Errorf("%w: cannot remove %d of %d bytes", ErrInvalidStorage, remove, acct.StorageBytes)
		}
		name = ixDecreaseStorage
	case *StorageAccountV2:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: cannot reduce storage", ErrStorageAccountIsImmutable)
		}
		if remove > acct.StorageBytes {
			return nil, fmt.Errorf("%w: cannot remove %d of %d bytes", ErrInvalidStorage, remove, acct.StorageBytes)
		}
		name = ixDecreaseStorage2
	default:
		return nil, ErrUnknownAccountVersion
	}

	owner := account.Owners()[0]
	addrs, err := deriveCommon(cfg, owner, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}
	unstakeInfo, _, err := GetUnstakeInfoPDA(cfg.ProgramID, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get unstake info PDA: %w", err)
	}
	unstakeAccount, _, err := GetUnstakeAccountPDA(cfg.ProgramID, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get unstake account PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(addrs.storageConfig),
		writable(storageAccountKey),
		writable(unstakeInfo),
		writable(unstakeAccount),
		payer(owner),
		writable(addrs.ownerATA),
		writable(addrs.stakeAccount),
		readonly(cfg.TokenMint),
		signer(cfg.Uploader),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarRentPubkey),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name).u64(remove))
}

// BuildMakeImmutable builds the instruction that permanently locks a storage account.
func BuildMakeImmutable(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount) (solana.Instruction, error) {
	var name string
	switch acct := account.(type) {
	case *StorageAccountV1:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: already immutable", ErrStorageAccountIsImmutable)
		}
		name = ixMakeAccountImmutable
	case *StorageAccountV2:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: already immutable", ErrStorageAccountIsImmutable)
		}
		name = ixMakeAccountImmutable2
	default:
		return nil, ErrUnknownAccountVersion
	}

	owner := account.Owners()[0]
	addrs, err := deriveCommon(cfg, owner, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(addrs.storageConfig),
		writable(storageAccountKey),
		writable(addrs.stakeAccount),
		writable(addrs.emissionsATA),
		payer(owner),
		signer(cfg.Uploader),
		writable(addrs.ownerATA),
		readonly(cfg.TokenMint),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
		readonly(AssociatedTokenProgramID),
		readonly(solana.SysVarRentPubkey),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name))
}

// BuildRequestDeleteStorageAccount marks a storage account for deletion at the next epoch.
func BuildRequestDeleteStorageAccount(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount) (solana.Instruction, error) {
	var name string
	switch acct := account.(type) {
	case *StorageAccountV1:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: cannot delete the account", ErrStorageAccountIsImmutable)
		}
		name = ixRequestDeleteAccount
	case *StorageAccountV2:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: cannot delete the account", ErrStorageAccountIsImmutable)
		}
		name = ixRequestDeleteAccount2
	default:
		return nil, ErrUnknownAccountVersion
	}

	storageConfig, _, err := GetStorageConfigPDA(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage config PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		readonly(storageConfig),
		writable(storageAccountKey),
		payer(account.Owners()[0]),
		readonly(cfg.TokenMint),
		readonly(solana.SystemProgramID),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name))
}

// BuildCancelDeleteStorageAccount clears a pending deletion request.
func BuildCancelDeleteStorageAccount(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount) (solana.Instruction, error) {
	var name string
	switch account.(type) {
	case *StorageAccountV1:
		name = ixUnmarkDeleteAccount
	case *StorageAccountV2:
		name = ixUnmarkDeleteAccount2
	default:
		return nil, ErrUnknownAccountVersion
	}

	storageConfig, _, err := GetStorageConfigPDA(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage config PDA: %w", err)
	}
	stakeAccount, _, err := GetStakeAccountPDA(cfg.ProgramID, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get stake account PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		readonly(storageConfig),
		writable(storageAccountKey),
		readonly(stakeAccount),
		payer(account.Owners()[0]),
		readonly(cfg.TokenMint),
		readonly(solana.SystemProgramID),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name))
}

// BuildRequestDeleteFile marks a v1 file account for deletion.
// V2 accounts have no on-chain file accounts and fail with ErrUnsupportedOperation.
func BuildRequestDeleteFile(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount, fileAccount solana.PublicKey) (solana.Instruction, error) {
	switch acct := account.(type) {
	case *StorageAccountV1:
		if acct.Immutable {
			return nil, fmt.Errorf("%w: cannot delete files", ErrStorageAccountIsImmutable)
		}
	case *StorageAccountV2:
		return nil, fmt.Errorf("%w: v2 files are deleted with a signed message", ErrUnsupportedOperation)
	default:
		return nil, ErrUnknownAccountVersion
	}

	storageConfig, _, err := GetStorageConfigPDA(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage config PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		readonly(storageConfig),
		readonly(storageAccountKey),
		writable(fileAccount),
		payer(account.Owners()[0]),
		readonly(cfg.TokenMint),
		readonly(solana.SystemProgramID),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(ixRequestDeleteFile))
}

// BuildClaimStake releases unstaked funds back to the owner's token account.
func BuildClaimStake(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount) (solana.Instruction, error) {
	var name string
	switch account.(type) {
	case *StorageAccountV1:
		name = ixClaimStake
	case *StorageAccountV2:
		name = ixClaimStake2
	default:
		return nil, ErrUnknownAccountVersion
	}

	owner := account.Owners()[0]
	addrs, err := deriveCommon(cfg, owner, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive addresses: %w", err)
	}
	unstakeInfo, _, err := GetUnstakeInfoPDA(cfg.ProgramID, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get unstake info PDA: %w", err)
	}
	unstakeAccount, _, err := GetUnstakeAccountPDA(cfg.ProgramID, storageAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get unstake account PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		readonly(addrs.storageConfig),
		readonly(storageAccountKey),
		writable(unstakeInfo),
		writable(unstakeAccount),
		payer(owner),
		writable(addrs.ownerATA),
		readonly(cfg.TokenMint),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
	}
	return newProgramInstruction(cfg, accounts, newInstructionArgs(name))
}
