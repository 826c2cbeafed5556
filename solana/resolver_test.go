package shdw_drive

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

func TestAccountExists(t *testing.T) {
	require := require.New(t)
	ledger := newFakeLedger()
	client := newTestClient(t, ledger, "")

	present := newTestKey(t).PublicKey()
	ledger.accounts[present] = []byte{1}

	state, err := client.AccountExists(context.Background(), present)
	require.NoError(err)
	require.Equal(AccountFound, state)

	state, err = client.AccountExists(context.Background(), newTestKey(t).PublicKey())
	require.NoError(err)
	require.Equal(AccountAbsent, state)

	ledger.accountErr = errors.New("timeout")
	_, err = client.AccountExists(context.Background(), present)
	var transportErr *TransportError
	require.ErrorAs(err, &transportErr)
}

func TestCheckUserInfo(t *testing.T) {
	require := require.New(t)
	ledger := newFakeLedger()
	client := newTestClient(t, ledger, "")
	owner := newTestKey(t).PublicKey()

	require.ErrorIs(client.CheckUserInfo(context.Background(), owner), ErrUserInfoNotCreated)

	pda, _, err := GetUserInfoPDA(DefaultProgramID, owner)
	require.NoError(err)
	ledger.accounts[pda] = encodeUserInfo(t, &UserInfo{AccountCounter: 2})
	require.NoError(client.CheckUserInfo(context.Background(), owner))

	info, err := client.GetUserInfo(context.Background(), owner)
	require.NoError(err)
	require.Equal(uint32(2), info.AccountCounter)
}

func TestGetStorageAccountUnknownLayout(t *testing.T) {
	ledger := newFakeLedger()
	client := newTestClient(t, ledger, "")
	key := newTestKey(t).PublicKey()
	ledger.accounts[key] = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	_, err := client.GetStorageAccount(context.Background(), key)
	require.ErrorIs(t, err, ErrUnknownAccountVersion)
}

func TestGetStorageAccounts(t *testing.T) {
	require := require.New(t)
	ledger := newFakeLedger()
	client := newTestClient(t, ledger, "")
	owner := newTestKey(t).PublicKey()

	v1 := sampleV1(t)
	v1.Owner1 = owner
	v2 := sampleV2(t)
	v2.Owner1 = owner
	v1Key := newTestKey(t).PublicKey()
	v2Key := newTestKey(t).PublicKey()

	keyed := func(key solana.PublicKey, data []byte) *rpc.KeyedAccount {
		return &rpc.KeyedAccount{Pubkey: key, Account: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)}}
	}
	ledger.programAccounts[Account_StorageAccount] = rpc.GetProgramAccountsResult{
		keyed(v1Key, encodeStorageAccountV1(t, v1)),
	}
	ledger.programAccounts[Account_StorageAccountV2] = rpc.GetProgramAccountsResult{
		keyed(v2Key, encodeStorageAccountV2(t, v2)),
		keyed(newTestKey(t).PublicKey(), Account_StorageAccountV2[:]),
	}

	results, err := client.GetStorageAccounts(context.Background(), owner)
	require.NoError(err)
	require.Len(results, 2)
	require.Equal(v1Key, results[0].Key)
	require.Equal(StorageAccountV1Version, results[0].Account.Version())
	require.Equal(v2Key, results[1].Key)
	require.Equal(StorageAccountV2Version, results[1].Account.Version())

	require.Len(ledger.programFilters, 2)
	require.Equal(uint64(39), ledger.programFilters[0][1].Memcmp.Offset)
	require.Equal(uint64(22), ledger.programFilters[1][1].Memcmp.Offset)
	require.Equal(solana.Base58(owner.Bytes()), ledger.programFilters[1][1].Memcmp.Bytes)
}
