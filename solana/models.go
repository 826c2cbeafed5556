package shdw_drive

// ShdwDriveResponse is returned by the delete and cancel-delete endpoints.
type ShdwDriveResponse struct {
	Txid string `json:"txid"`
}

// CreateStorageAccountResponse is returned when a storage account is created.
type CreateStorageAccountResponse struct {
	ShdwBucket           string `json:"shdw_bucket"`
	TransactionSignature string `json:"transaction_signature"`
}

// StorageResponse is returned by add-storage, reduce-storage and make-immutable.
type StorageResponse struct {
	Message              string `json:"message"`
	TransactionSignature string `json:"transaction_signature"`
	Error                string `json:"error,omitempty"`
}

// DeleteFileResponse is returned by delete-file.
type DeleteFileResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// FileDataResponse is the coordinator's metadata for a stored object.
type FileDataResponse struct {
	FileData FileData `json:"file_data"`
}

type FileData struct {
	FileAccountPubkey    string `json:"file_account_pubkey"`
	OwnerAccountPubkey   string `json:"owner_account_pubkey"`
	StorageAccountPubkey string `json:"storage_account_pubkey"`
	FileName             string `json:"file_name"`
}

// ListObjectsResponse lists the object keys of a storage account.
type ListObjectsResponse struct {
	Keys []string `json:"keys"`
}

// ClaimStakeResponse carries the ledger signature of a claim.
type ClaimStakeResponse struct {
	TransactionSignature string `json:"transaction_signature"`
}
