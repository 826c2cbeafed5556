package shdw_drive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Precondition and validation errors. Callers branch on these with errors.Is.
var (
	ErrAccountNotFound                = errors.New("account not found")
	ErrUnknownAccountVersion          = errors.New("unknown storage account version")
	ErrStorageAccountIsNotImmutable   = errors.New("storage account is not immutable")
	ErrStorageAccountIsImmutable      = errors.New("storage account is immutable")
	ErrUserInfoNotCreated             = errors.New("user info account has not been created")
	ErrInvalidStorage                 = errors.New("invalid storage size, only KB, MB and GB are supported")
	ErrTransactionSerializationFailed = errors.New("transaction serialization failed")
	ErrUnsupportedOperation           = errors.New("operation not supported for this storage account version")
	ErrNotAccountOwner                = errors.New("signer is not the owner of the storage account")
)

// TransportError wraps a ledger RPC or HTTP failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is returned when the coordinator answers with a non-2xx status.
// Message holds the response body exactly as received.
type ServerError struct {
	Status  int
	Message json.RawMessage
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("shadow drive server error: status %d: %s", e.Status, string(e.Message))
}

// DecodeError means a 2xx response body did not match the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SerializationError covers signing and wire encoding failures.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrTransactionSerializationFailed, e.Err)
}

// Is reports ErrTransactionSerializationFailed as a match.
func (e *SerializationError) Is(target error) bool {
	return target == ErrTransactionSerializationFailed
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
