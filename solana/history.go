package shdw_drive

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	// DefaultHistoryLimit is the number of signatures fetched when no limit is given.
	DefaultHistoryLimit = 25
	maxHistoryLimit     = 1000
	historyBatchSize    = 10
)

var (
	initInstructionNamesOnce sync.Once
	// Map of instruction discriminators to instruction names
	instructionNameMap map[[8]byte]string
)

// HistoryEntry is one transaction that touched a storage account.
type HistoryEntry struct {
	Signature    solana.Signature `json:"signature"`
	Slot         uint64           `json:"slot"`
	Timestamp    time.Time        `json:"timestamp"`
	Instructions []string         `json:"instructions"`
	Failed       bool             `json:"failed"`
}

func initializeInstructionNames() {
	initInstructionNamesOnce.Do(func() {
		names := []string{
			ixInitializeAccount, ixInitializeAccount2,
			ixIncreaseStorage, ixIncreaseStorage2,
			ixIncreaseImmutableStorage, ixIncreaseImmutableStorage2,
			ixDecreaseStorage, ixDecreaseStorage2,
			ixMakeAccountImmutable, ixMakeAccountImmutable2,
			ixRequestDeleteAccount, ixRequestDeleteAccount2,
			ixUnmarkDeleteAccount, ixUnmarkDeleteAccount2,
			ixRequestDeleteFile,
			ixClaimStake, ixClaimStake2,
		}
		instructionNameMap = make(map[[8]byte]string, len(names))
		for _, name := range names {
			instructionNameMap[InstructionDiscriminator(name)] = name
		}
	})
}

// InstructionName returns the storage program instruction encoded in data.
func InstructionName(data []byte) (string, bool) {
	initializeInstructionNames()
	if len(data) < 8 {
		return "", false
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	name, ok := instructionNameMap[disc]
	return name, ok
}

// GetStorageAccountHistory returns the most recent transactions that touched
// a storage account, newest first, with the storage program instructions each
// one ran. Transactions that cannot be fetched are logged and skipped.
func (c *Client) GetStorageAccountHistory(ctx context.Context, storageAccountKey solana.PublicKey, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	signatures, err := c.rpcClient.GetSignaturesForAddressWithOpts(ctx, storageAccountKey, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, &TransportError{Op: "get signatures for address", Err: err}
	}

	entries := make([]*HistoryEntry, len(signatures))

	// Fetch transactions concurrently in batches
	var wg sync.WaitGroup
	for i := 0; i < len(signatures); i += historyBatchSize {
		end := i + historyBatchSize
		if end > len(signatures) {
			end = len(signatures)
		}

		for j := i; j < end; j++ {
			wg.Add(1)
			go func(j int, sigInfo *rpc.TransactionSignature) {
				defer wg.Done()
				entry, err := c.historyEntry(ctx, sigInfo)
				if err != nil {
					c.logger.Warn("skipping transaction", zap.Stringer("signature", sigInfo.Signature), zap.Error(err))
					return
				}
				entries[j] = entry
			}(j, signatures[j])
		}

		// Wait for the current batch before starting the next
		wg.Wait()
	}

	result := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry != nil {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (c *Client) historyEntry(ctx context.Context, sigInfo *rpc.TransactionSignature) (*HistoryEntry, error) {
	version := uint64(0)
	txResult, err := c.rpcClient.GetTransaction(ctx, sigInfo.Signature, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &version,
	})
	if err != nil {
		return nil, &TransportError{Op: "get transaction", Err: err}
	}

	entry := &HistoryEntry{
		Signature:    sigInfo.Signature,
		Slot:         sigInfo.Slot,
		Instructions: []string{},
		Failed:       sigInfo.Err != nil,
	}
	if sigInfo.BlockTime != nil {
		entry.Timestamp = sigInfo.BlockTime.Time()
	}
	if txResult == nil || txResult.Transaction == nil {
		return entry, nil
	}

	tx, err := txResult.Transaction.GetTransaction()
	if err != nil {
		return nil, &DecodeError{Op: "get transaction", Err: err}
	}
	entry.Instructions = c.programInstructions(tx)
	return entry, nil
}

// programInstructions names the storage program instructions in tx.
func (c *Client) programInstructions(tx *solana.Transaction) []string {
	names := []string{}
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(tx.Message.AccountKeys) {
			continue
		}
		if !tx.Message.AccountKeys[ix.ProgramIDIndex].Equals(c.cfg.ProgramID) {
			continue
		}
		if name, ok := InstructionName(ix.Data); ok {
			names = append(names, name)
		} else {
			names = append(names, "unknown")
		}
	}
	return names
}
