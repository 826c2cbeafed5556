package shdw_drive

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// GetObjectData returns the coordinator's metadata for the object at location.
func (c *Client) GetObjectData(ctx context.Context, location string) (*FileDataResponse, error) {
	var resp FileDataResponse
	if err := c.postJSON(ctx, endpointGetObjectData, map[string]string{"location": location}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListObjects lists the object keys stored in a storage account.
func (c *Client) ListObjects(ctx context.Context, storageAccountKey solana.PublicKey) (*ListObjectsResponse, error) {
	var resp ListObjectsResponse
	body := map[string]string{"storageAccount": storageAccountKey.String()}
	if err := c.postJSON(ctx, endpointListObjects, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
