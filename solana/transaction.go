package shdw_drive

import (
	"context"
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Signer signs transaction messages. solana.PrivateKey satisfies it.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(payload []byte) (solana.Signature, error)
}

// SignAndEncode fetches a fresh blockhash, partially signs the instructions with
// signer as fee payer and returns the base64 wire encoding.
// A retry must call SignAndEncode again; the blockhash expires quickly.
func (c *Client) SignAndEncode(ctx context.Context, signer Signer, instructions ...solana.Instruction) (string, error) {
	tx, err := c.signTransaction(ctx, signer, instructions...)
	if err != nil {
		return "", err
	}
	return EncodeTransaction(tx)
}

func (c *Client) signTransaction(ctx context.Context, signer Signer, instructions ...solana.Instruction) (*solana.Transaction, error) {
	latestBlockhash, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, &TransportError{Op: "get latest blockhash", Err: err}
	}
	if latestBlockhash == nil || latestBlockhash.Value == nil {
		return nil, &TransportError{Op: "get latest blockhash", Err: fmt.Errorf("empty response")}
	}

	tx, err := PartialSign(instructions, latestBlockhash.Value.Blockhash, signer)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("signed transaction",
		zap.Stringer("fee_payer", signer.PublicKey()),
		zap.Stringer("blockhash", latestBlockhash.Value.Blockhash),
		zap.Int("instructions", len(instructions)),
	)
	return tx, nil
}

// PartialSign builds a transaction paid by signer and fills in only the
// signer's signature. Other required signers, such as the uploader, are left
// zeroed for the coordinator to co-sign.
func PartialSign(instructions []solana.Instruction, blockhash solana.Hash, signer Signer) (*solana.Transaction, error) {
	feePayer := signer.PublicKey()

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("failed to create transaction: %w", err)}
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("failed to marshal message: %w", err)}
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	tx.Signatures = make([]solana.Signature, required)

	index := -1
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(feePayer) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, &SerializationError{Err: fmt.Errorf("signer %s is not a required signer", feePayer)}
	}

	signature, err := signer.Sign(message)
	if err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("failed to sign transaction: %w", err)}
	}
	tx.Signatures[index] = signature

	return tx, nil
}

// EncodeTransaction serializes tx in the wire format and base64 encodes it.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", &SerializationError{Err: fmt.Errorf("failed to serialize transaction: %w", err)}
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeTransaction reverses EncodeTransaction.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return tx, nil
}
