package shdw_drive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// LedgerRPC is the subset of the Solana RPC API used by the client.
// *rpc.Client satisfies it.
type LedgerRPC interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

// Client is a client for Shadow Drive. It holds no key material; every
// mutating call borrows a Signer for the duration of the call.
// A Client is safe for concurrent use.
type Client struct {
	rpcClient  LedgerRPC
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for the coordinator.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client talking to the given Solana RPC endpoint.
func NewClient(rpcEndpoint string, cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return NewClientWithRPC(NewRPCClient(rpcEndpoint, cfg.RequestTimeout, nil), cfg, opts...)
}

// NewClientWithRPC creates a new Client on top of an existing ledger RPC handle.
func NewClientWithRPC(rpcClient LedgerRPC, cfg Config, opts ...Option) (*Client, error) {
	if rpcClient == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		rpcClient:  rpcClient,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("shdw-drive")

	return c, nil
}

// NewRPCClient creates a Solana RPC client whose calls are bounded by timeout.
// headers are sent with every request, e.g. a premium RPC bearer token.
func NewRPCClient(endpoint string, timeout time.Duration, headers map[string]string) *rpc.Client {
	return rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient:    &http.Client{Timeout: timeout},
		CustomHeaders: headers,
	}))
}

// NewAuthenticatedRPC creates a Solana RPC client for a premium endpoint that
// requires the bearer token obtained from the GenesysGo handshake.
func NewAuthenticatedRPC(endpoint, token string, timeout time.Duration) *rpc.Client {
	return NewRPCClient(endpoint, timeout, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}
