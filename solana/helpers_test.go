package shdw_drive

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLedger is an in-memory LedgerRPC.
type fakeLedger struct {
	mu sync.Mutex

	accounts     map[solana.PublicKey][]byte
	accountErr   error
	blockhash    solana.Hash
	blockhashErr error

	programAccounts map[[8]byte]rpc.GetProgramAccountsResult
	programFilters  [][]rpc.RPCFilter

	sent    []*solana.Transaction
	sendErr error

	signatures   []*rpc.TransactionSignature
	transactions map[solana.Signature]*rpc.GetTransactionResult
	txErr        map[solana.Signature]error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts:        make(map[solana.PublicKey][]byte),
		blockhash:       solana.Hash{1, 2, 3, 4, 5, 6, 7, 8},
		programAccounts: make(map[[8]byte]rpc.GetProgramAccountsResult),
		transactions:    make(map[solana.Signature]*rpc.GetTransactionResult),
		txErr:           make(map[solana.Signature]error),
	}
}

func (f *fakeLedger) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	data, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)},
	}, nil
}

func (f *fakeLedger) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if f.blockhashErr != nil {
		return nil, f.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: f.blockhash},
	}, nil
}

func (f *fakeLedger) GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	f.programFilters = append(f.programFilters, opts.Filters)
	var disc [8]byte
	copy(disc[:], opts.Filters[0].Memcmp.Bytes)
	return f.programAccounts[disc], nil
}

func (f *fakeLedger) SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sent = append(f.sent, transaction)
	return solana.Signature{9, 9, 9}, nil
}

func (f *fakeLedger) GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	return f.signatures, nil
}

func (f *fakeLedger) GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.txErr[txSig]; err != nil {
		return nil, err
	}
	return f.transactions[txSig], nil
}

func newTestClient(t *testing.T, ledger LedgerRPC, endpoint string) *Client {
	t.Helper()
	cfg := DefaultConfig()
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	client, err := NewClientWithRPC(ledger, cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return client
}

func newTestKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

// layoutWriter borsh-encodes account fixtures.
type layoutWriter struct {
	t   *testing.T
	buf bytes.Buffer
	enc *bin.Encoder
}

func newLayoutWriter(t *testing.T, disc [8]byte) *layoutWriter {
	w := &layoutWriter{t: t}
	w.enc = bin.NewBorshEncoder(&w.buf)
	require.NoError(t, w.enc.WriteBytes(disc[:], false))
	return w
}

func (w *layoutWriter) boolean(v bool) *layoutWriter {
	require.NoError(w.t, w.enc.WriteBool(v))
	return w
}

func (w *layoutWriter) u32(v uint32) *layoutWriter {
	require.NoError(w.t, w.enc.WriteUint32(v, binary.LittleEndian))
	return w
}

func (w *layoutWriter) u64(v uint64) *layoutWriter {
	require.NoError(w.t, w.enc.WriteUint64(v, binary.LittleEndian))
	return w
}

func (w *layoutWriter) pubkey(pk solana.PublicKey) *layoutWriter {
	require.NoError(w.t, w.enc.WriteBytes(pk[:], false))
	return w
}

func (w *layoutWriter) str(s string) *layoutWriter {
	w.u32(uint32(len(s)))
	require.NoError(w.t, w.enc.WriteBytes([]byte(s), false))
	return w
}

func (w *layoutWriter) bytes() []byte {
	return w.buf.Bytes()
}

func encodeStorageAccountV1(t *testing.T, a *StorageAccountV1) []byte {
	return newLayoutWriter(t, Account_StorageAccount).
		boolean(a.IsStatic).
		u32(a.InitCounter).
		u32(a.DelCounter).
		boolean(a.Immutable).
		boolean(a.ToBeDeleted).
		u32(a.DeleteRequestEpoch).
		u64(a.StorageBytes).
		u64(a.StorageAvailable).
		pubkey(a.Owner1).
		pubkey(a.Owner2).
		pubkey(a.ShdwPayer).
		u32(a.AccountCounterSeedValue).
		u64(a.TotalCostOfCurrentStorage).
		u64(a.TotalFeesPaid).
		u32(a.CreationTime).
		u32(a.CreationEpoch).
		u32(a.LastFeeEpoch).
		str(a.IdentifierValue).
		bytes()
}

func encodeStorageAccountV2(t *testing.T, a *StorageAccountV2) []byte {
	return newLayoutWriter(t, Account_StorageAccountV2).
		boolean(a.Immutable).
		boolean(a.ToBeDeleted).
		u32(a.DeleteRequestEpoch).
		u64(a.StorageBytes).
		pubkey(a.Owner1).
		u32(a.AccountCounterSeedValue).
		u32(a.CreationTime).
		u32(a.CreationEpoch).
		u32(a.LastFeeEpoch).
		str(a.IdentifierValue).
		bytes()
}

func encodeUserInfo(t *testing.T, info *UserInfo) []byte {
	return newLayoutWriter(t, Account_UserInfo).
		u32(info.AccountCounter).
		u32(info.DelCounter).
		boolean(info.AgreedToTos).
		boolean(info.LifetimeBadCsam).
		bytes()
}
