package shdw_drive

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Coordinator endpoints.
const (
	endpointCreateStorageAccount = "storage-account"
	endpointAddStorage           = "add-storage"
	endpointReduceStorage        = "reduce-storage"
	endpointMakeImmutable        = "make-immutable"
	endpointDeleteStorageAccount = "delete-storage-account"
	endpointCancelDelete         = "cancel-delete-storage-account"
	endpointDeleteFile           = "delete-file"
	endpointGetObjectData        = "get-object-data"
	endpointListObjects          = "list-objects"
)

// requireOwner rejects signers other than the designated owner (owner_1).
func requireOwner(account StorageAccount, signer Signer) error {
	if !account.Owners()[0].Equals(signer.PublicKey()) {
		return fmt.Errorf("%w: owner is %s", ErrNotAccountOwner, account.Owners()[0])
	}
	return nil
}

// CreateStorageAccountRequest describes a storage account to create.
// Owner2 optionally adds a second owner to a v1 account.
type CreateStorageAccountRequest struct {
	Name    string
	Size    string
	Version StorageAccountVersion
	Owner2  *solana.PublicKey
}

// CreateStorageAccount creates a new storage account owned by signer.
func (c *Client) CreateStorageAccount(ctx context.Context, signer Signer, req CreateStorageAccountRequest) (*CreateStorageAccountResponse, error) {
	storage, err := ParseStorageSize(req.Size)
	if err != nil {
		return nil, err
	}
	owner := signer.PublicKey()

	// 1. Find the next account seed from the user info account
	// --------------------------------------------------------
	var seed uint32
	userInfo, err := c.GetUserInfo(ctx, owner)
	switch {
	case err == nil:
		seed = userInfo.AccountCounter
	case errors.Is(err, ErrAccountNotFound):
		// First account; the program creates user info alongside it.
	default:
		return nil, err
	}

	// 2. Build the initialize instruction
	// ------------------------------------
	ix, storageAccount, err := BuildCreateStorageAccount(c.cfg, CreateStorageAccountParams{
		Version: req.Version,
		Owner:   owner,
		Owner2:  req.Owner2,
		Seed:    seed,
		Name:    req.Name,
		Storage: storage,
	})
	if err != nil {
		return nil, err
	}

	// 3. Sign and submit
	// ------------------
	encoded, err := c.SignAndEncode(ctx, signer, ix)
	if err != nil {
		return nil, err
	}

	c.logger.Info("creating storage account",
		zap.Stringer("account", storageAccount),
		zap.Stringer("version", req.Version),
		zap.Uint64("bytes", storage),
	)

	var resp CreateStorageAccountResponse
	if err := c.submit(ctx, endpointCreateStorageAccount, encoded, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddStorage adds capacity to a mutable storage account.
func (c *Client) AddStorage(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey, size string) (*StorageResponse, error) {
	return c.resize(ctx, signer, storageAccountKey, size, endpointAddStorage, BuildAddStorage)
}

// AddImmutableStorage adds capacity to an immutable storage account.
// It fails with ErrStorageAccountIsNotImmutable for mutable accounts.
func (c *Client) AddImmutableStorage(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey, size string) (*StorageResponse, error) {
	return c.resize(ctx, signer, storageAccountKey, size, endpointAddStorage, BuildAddImmutableStorage)
}

// ReduceStorage removes capacity from a storage account. The released stake
// becomes claimable with ClaimStake.
func (c *Client) ReduceStorage(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey, size string) (*StorageResponse, error) {
	return c.resize(ctx, signer, storageAccountKey, size, endpointReduceStorage, BuildReduceStorage)
}

type resizeBuilder func(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount, bytes uint64) (solana.Instruction, error)

func (c *Client) resize(
	ctx context.Context,
	signer Signer,
	storageAccountKey solana.PublicKey,
	size string,
	endpoint string,
	build resizeBuilder,
) (*StorageResponse, error) {
	sizeBytes, err := ParseStorageSize(size)
	if err != nil {
		return nil, err
	}

	// 1. The user info account must exist before any resize
	// -----------------------------------------------------
	if err := c.CheckUserInfo(ctx, signer.PublicKey()); err != nil {
		return nil, err
	}

	// 2. Resolve the account version and build the matching instruction
	// ------------------------------------------------------------------
	account, err := c.GetStorageAccount(ctx, storageAccountKey)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(account, signer); err != nil {
		return nil, err
	}
	ix, err := build(c.cfg, storageAccountKey, account, sizeBytes)
	if err != nil {
		return nil, err
	}

	// 3. Sign and submit
	// ------------------
	encoded, err := c.SignAndEncode(ctx, signer, ix)
	if err != nil {
		return nil, err
	}

	var resp StorageResponse
	if err := c.submit(ctx, endpoint, encoded, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MakeStorageImmutable permanently locks a storage account.
func (c *Client) MakeStorageImmutable(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey) (*StorageResponse, error) {
	var resp StorageResponse
	if err := c.runAccountOperation(ctx, signer, storageAccountKey, endpointMakeImmutable, BuildMakeImmutable, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteStorageAccount requests deletion of a storage account.
func (c *Client) DeleteStorageAccount(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey) (*ShdwDriveResponse, error) {
	var resp ShdwDriveResponse
	if err := c.runAccountOperation(ctx, signer, storageAccountKey, endpointDeleteStorageAccount, BuildRequestDeleteStorageAccount, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelDeleteStorageAccount withdraws a pending deletion request.
func (c *Client) CancelDeleteStorageAccount(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey) (*ShdwDriveResponse, error) {
	var resp ShdwDriveResponse
	if err := c.runAccountOperation(ctx, signer, storageAccountKey, endpointCancelDelete, BuildCancelDeleteStorageAccount, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type accountBuilder func(cfg Config, storageAccountKey solana.PublicKey, account StorageAccount) (solana.Instruction, error)

func (c *Client) runAccountOperation(
	ctx context.Context,
	signer Signer,
	storageAccountKey solana.PublicKey,
	endpoint string,
	build accountBuilder,
	out interface{},
) error {
	account, err := c.GetStorageAccount(ctx, storageAccountKey)
	if err != nil {
		return err
	}
	if err := requireOwner(account, signer); err != nil {
		return err
	}

	ix, err := build(c.cfg, storageAccountKey, account)
	if err != nil {
		return err
	}

	encoded, err := c.SignAndEncode(ctx, signer, ix)
	if err != nil {
		return err
	}
	return c.submit(ctx, endpoint, encoded, out)
}

// ClaimStake claims stake released by ReduceStorage. The transaction needs no
// uploader signature, so it goes straight to the ledger.
func (c *Client) ClaimStake(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey) (*ClaimStakeResponse, error) {
	account, err := c.GetStorageAccount(ctx, storageAccountKey)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(account, signer); err != nil {
		return nil, err
	}

	ix, err := BuildClaimStake(c.cfg, storageAccountKey, account)
	if err != nil {
		return nil, err
	}

	tx, err := c.signTransaction(ctx, signer, ix)
	if err != nil {
		return nil, err
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, &TransportError{Op: "send claim stake transaction", Err: err}
	}
	return &ClaimStakeResponse{TransactionSignature: sig.String()}, nil
}

// DeleteFile deletes a stored file. V1 accounts mark the on-chain file
// account for deletion; v2 accounts authorize the delete with a signed message.
func (c *Client) DeleteFile(ctx context.Context, signer Signer, storageAccountKey solana.PublicKey, fileURL string) (*DeleteFileResponse, error) {
	account, err := c.GetStorageAccount(ctx, storageAccountKey)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(account, signer); err != nil {
		return nil, err
	}

	var resp DeleteFileResponse
	switch account.(type) {
	case *StorageAccountV1:
		objectData, err := c.GetObjectData(ctx, fileURL)
		if err != nil {
			return nil, err
		}
		fileAccount, err := solana.PublicKeyFromBase58(objectData.FileData.FileAccountPubkey)
		if err != nil {
			return nil, &DecodeError{Op: endpointGetObjectData, Err: fmt.Errorf("invalid file account: %w", err)}
		}

		ix, err := BuildRequestDeleteFile(c.cfg, storageAccountKey, account, fileAccount)
		if err != nil {
			return nil, err
		}
		encoded, err := c.SignAndEncode(ctx, signer, ix)
		if err != nil {
			return nil, err
		}
		if err := c.submit(ctx, endpointDeleteFile, encoded, &resp); err != nil {
			return nil, err
		}
	case *StorageAccountV2:
		body, err := SignDeleteFileMessage(signer, storageAccountKey, fileURL)
		if err != nil {
			return nil, err
		}
		if err := c.postJSON(ctx, endpointDeleteFile, body, &resp); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownAccountVersion
	}
	return &resp, nil
}

// DeleteFileRequest is the signed-message body used to delete v2 files.
type DeleteFileRequest struct {
	Signer   string `json:"signer"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

// SignDeleteFileMessage signs the delete authorization for a v2 file.
func SignDeleteFileMessage(signer Signer, storageAccountKey solana.PublicKey, fileURL string) (*DeleteFileRequest, error) {
	message := fmt.Sprintf("Shadow Drive Signed Message:\nStorageAccount: %s\nFile to delete: %s", storageAccountKey, fileURL)
	sig, err := signer.Sign([]byte(message))
	if err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("failed to sign delete message: %w", err)}
	}
	return &DeleteFileRequest{
		Signer:   signer.PublicKey().String(),
		Message:  sig.String(),
		Location: fileURL,
	}, nil
}
