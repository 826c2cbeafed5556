package shdw_drive

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// AccountState is the outcome of an existence check that did not fail.
type AccountState int

const (
	AccountAbsent AccountState = iota
	AccountFound
)

func (s AccountState) String() string {
	if s == AccountFound {
		return "found"
	}
	return "absent"
}

// fetchAccount reads an account and separates "confirmed absent" from query failures.
func (c *Client) fetchAccount(ctx context.Context, op string, key solana.PublicKey) (*rpc.Account, AccountState, error) {
	resp, err := c.rpcClient.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, AccountAbsent, nil
	}
	if err != nil {
		return nil, AccountAbsent, &TransportError{Op: op, Err: err}
	}
	if resp == nil || resp.Value == nil {
		return nil, AccountAbsent, nil
	}
	return resp.Value, AccountFound, nil
}

// AccountExists reports whether an account exists. A returned error always
// means the query itself failed, never that the account is missing.
func (c *Client) AccountExists(ctx context.Context, key solana.PublicKey) (AccountState, error) {
	_, state, err := c.fetchAccount(ctx, "check account", key)
	return state, err
}

// GetStorageAccount fetches and decodes a storage account of any known version.
func (c *Client) GetStorageAccount(ctx context.Context, key solana.PublicKey) (StorageAccount, error) {
	account, state, err := c.fetchAccount(ctx, "get storage account", key)
	if err != nil {
		return nil, err
	}
	if state == AccountAbsent {
		return nil, ErrAccountNotFound
	}

	storageAccount, err := DecodeStorageAccount(account.Data.GetBinary())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("resolved storage account",
		zap.Stringer("account", key),
		zap.Stringer("version", storageAccount.Version()),
		zap.Bool("immutable", storageAccount.IsImmutable()),
	)
	return storageAccount, nil
}

// GetUserInfo fetches the owner's user info account.
// It fails with ErrAccountNotFound when the account does not exist.
func (c *Client) GetUserInfo(ctx context.Context, owner solana.PublicKey) (*UserInfo, error) {
	userInfoPDA, _, err := GetUserInfoPDA(c.cfg.ProgramID, owner)
	if err != nil {
		return nil, err
	}

	account, state, err := c.fetchAccount(ctx, "get user info", userInfoPDA)
	if err != nil {
		return nil, err
	}
	if state == AccountAbsent {
		return nil, ErrAccountNotFound
	}
	return ParseAccount_UserInfo(account.Data.GetBinary())
}

// CheckUserInfo fails with ErrUserInfoNotCreated when the owner has no user info account.
func (c *Client) CheckUserInfo(ctx context.Context, owner solana.PublicKey) error {
	userInfoPDA, _, err := GetUserInfoPDA(c.cfg.ProgramID, owner)
	if err != nil {
		return err
	}

	state, err := c.AccountExists(ctx, userInfoPDA)
	if err != nil {
		return err
	}
	if state == AccountAbsent {
		return ErrUserInfoNotCreated
	}
	return nil
}

// StorageAccountResult pairs a storage account with its address.
type StorageAccountResult struct {
	Key     solana.PublicKey
	Account StorageAccount
}

// GetStorageAccounts lists every v1 and v2 storage account owned by owner.
func (c *Client) GetStorageAccounts(ctx context.Context, owner solana.PublicKey) ([]StorageAccountResult, error) {
	layouts := []struct {
		discriminator [8]byte
		ownerOffset   uint64
	}{
		{Account_StorageAccount, storageAccountV1OwnerOffset},
		{Account_StorageAccountV2, storageAccountV2OwnerOffset},
	}

	var results []StorageAccountResult
	for _, layout := range layouts {
		disc := layout.discriminator
		resp, err := c.rpcClient.GetProgramAccountsWithOpts(ctx, c.cfg.ProgramID, &rpc.GetProgramAccountsOpts{
			Commitment: rpc.CommitmentFinalized,
			Encoding:   solana.EncodingBase64,
			Filters: []rpc.RPCFilter{
				{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: disc[:]}},
				{Memcmp: &rpc.RPCFilterMemcmp{Offset: layout.ownerOffset, Bytes: owner.Bytes()}},
			},
		})
		if err != nil {
			return nil, &TransportError{Op: "get storage accounts", Err: err}
		}

		for _, keyed := range resp {
			account, err := DecodeStorageAccount(keyed.Account.Data.GetBinary())
			if err != nil {
				c.logger.Warn("skipping undecodable storage account",
					zap.Stringer("account", keyed.Pubkey),
					zap.Error(err),
				)
				continue
			}
			results = append(results, StorageAccountResult{Key: keyed.Pubkey, Account: account})
		}
	}

	return results, nil
}
