package shdw_drive

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

func TestInstructionName(t *testing.T) {
	require := require.New(t)

	disc := InstructionDiscriminator("decrease_storage2")
	name, ok := InstructionName(append(disc[:], 1, 2, 3))
	require.True(ok)
	require.Equal("decrease_storage2", name)

	_, ok = InstructionName([]byte{1, 2, 3})
	require.False(ok)

	_, ok = InstructionName(make([]byte, 8))
	require.False(ok)
}

func TestProgramInstructions(t *testing.T) {
	require := require.New(t)
	client := newTestClient(t, newFakeLedger(), "")
	owner := newTestKey(t).PublicKey()

	acct := sampleV2(t)
	acct.Immutable = false
	acct.Owner1 = owner
	add, err := BuildAddStorage(client.Config(), newTestKey(t).PublicKey(), acct, 1000)
	require.NoError(err)

	other := solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, []byte("hello"))
	unknown := solana.NewInstruction(DefaultProgramID, solana.AccountMetaSlice{}, []byte{0, 0, 0, 0, 0, 0, 0, 0})

	tx, err := solana.NewTransaction([]solana.Instruction{add, other, unknown}, solana.Hash{1}, solana.TransactionPayer(owner))
	require.NoError(err)

	require.Equal([]string{"increase_storage2", "unknown"}, client.programInstructions(tx))
}

func TestGetStorageAccountHistory(t *testing.T) {
	require := require.New(t)
	ledger := newFakeLedger()
	client := newTestClient(t, ledger, "")

	sigs := []solana.Signature{{1}, {2}, {3}}
	for i, sig := range sigs {
		ledger.signatures = append(ledger.signatures, &rpc.TransactionSignature{
			Signature: sig,
			Slot:      uint64(100 - i),
		})
	}
	ledger.signatures[2].Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}
	ledger.txErr[sigs[1]] = errors.New("pruned")

	entries, err := client.GetStorageAccountHistory(context.Background(), newTestKey(t).PublicKey(), 0)
	require.NoError(err)
	require.Len(entries, 2)
	require.Equal(sigs[0], entries[0].Signature)
	require.False(entries[0].Failed)
	require.Equal(sigs[2], entries[1].Signature)
	require.True(entries[1].Failed)
	require.Empty(entries[1].Instructions)
}
