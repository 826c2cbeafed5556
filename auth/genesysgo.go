package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	shdw_drive "shdw-cli/solana"
)

const (
	DefaultSignInMessage    = "Sign in to GenesysGo Shadow Platform."
	DefaultPortalSignInURL  = "https://portal.genesysgo.net/api/signin"
	DefaultPortalTokenURL   = "https://portal.genesysgo.net/api/premium/token"
	DefaultProviderFragment = "genesysgo"
)

var (
	ErrNotProviderURL   = errors.New("not a genesysgo URL, cannot infer account ID")
	ErrMissingAccountID = errors.New("could not find an account ID in the URL path")
)

// Config holds the portal endpoints and the challenge string.
type Config struct {
	SignInMessage    string
	PortalSignInURL  string
	PortalTokenURL   string
	ProviderFragment string
	Timeout          time.Duration
}

// DefaultConfig returns the production portal configuration.
func DefaultConfig() Config {
	return Config{
		SignInMessage:    DefaultSignInMessage,
		PortalSignInURL:  DefaultPortalSignInURL,
		PortalTokenURL:   DefaultPortalTokenURL,
		ProviderFragment: DefaultProviderFragment,
		Timeout:          shdw_drive.DefaultRequestTimeout,
	}
}

// PortalAuthResponse is the result of the portal sign-in step.
type PortalAuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User is the signed-in portal account.
type User struct {
	ID        uint64 `json:"id"`
	PublicKey string `json:"publicKey"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// TokenResponse carries the bearer token for premium RPC requests.
type TokenResponse struct {
	Token string `json:"token"`
}

// SignInRequest is the body of the portal sign-in step.
type SignInRequest struct {
	Message string `json:"message"`
	Signer  string `json:"signer"`
}

// Authenticator performs the two step GenesysGo sign-in.
type Authenticator struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAuthenticator creates an Authenticator. A nil logger discards output.
func NewAuthenticator(cfg Config, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("genesysgo-auth"),
	}
}

// Authenticate runs both sign-in steps and returns only the RPC bearer token.
// The intermediate portal token is discarded.
func (a *Authenticator) Authenticate(ctx context.Context, signer shdw_drive.Signer, accountID string) (string, error) {
	portal, err := a.PortalSignIn(ctx, signer)
	if err != nil {
		return "", err
	}
	token, err := a.RPCToken(ctx, accountID, portal.Token)
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// NewSignInRequest signs the challenge message and builds the step one body.
func NewSignInRequest(signer shdw_drive.Signer, message string) (*SignInRequest, error) {
	sig, err := signer.Sign([]byte(message))
	if err != nil {
		return nil, fmt.Errorf("failed to sign challenge message: %w", err)
	}
	return &SignInRequest{
		Message: base58.Encode(sig[:]),
		Signer:  signer.PublicKey().String(),
	}, nil
}

// PortalSignIn is step one: exchange a signed challenge for a portal JWT.
func (a *Authenticator) PortalSignIn(ctx context.Context, signer shdw_drive.Signer) (*PortalAuthResponse, error) {
	body, err := NewSignInRequest(signer, a.cfg.SignInMessage)
	if err != nil {
		return nil, err
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign-in request: %w", err)
	}

	var resp PortalAuthResponse
	if err := a.post(ctx, "portal sign-in", a.cfg.PortalSignInURL, bytes.NewReader(jsonBody), "", &resp); err != nil {
		return nil, err
	}

	a.logger.Debug("portal sign-in complete", zap.Uint64("user_id", resp.User.ID))
	return &resp, nil
}

// RPCToken is step two: exchange the portal JWT for an RPC bearer token
// scoped to accountID.
func (a *Authenticator) RPCToken(ctx context.Context, accountID, portalToken string) (*TokenResponse, error) {
	if accountID == "" {
		return nil, ErrMissingAccountID
	}
	tokenURL := strings.TrimRight(a.cfg.PortalTokenURL, "/") + "/" + url.PathEscape(accountID)

	var resp TokenResponse
	if err := a.post(ctx, "rpc token", tokenURL, nil, portalToken, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Authenticator) post(ctx context.Context, op, reqURL string, body io.Reader, bearer string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &shdw_drive.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	return shdw_drive.ReadResponse(op, resp, out)
}

// ParseAccountIDFromURL extracts the account ID from a GenesysGo provider URL,
// e.g. https://example.genesysgo.net/abc123 yields abc123. The scheme may be
// omitted.
func ParseAccountIDFromURL(providerURL string) (string, error) {
	return parseAccountIDFromURL(providerURL, DefaultProviderFragment)
}

// ParseAccountIDFromURL is like the package level function but honours the
// configured host fragment.
func (a *Authenticator) ParseAccountIDFromURL(providerURL string) (string, error) {
	return parseAccountIDFromURL(providerURL, a.cfg.ProviderFragment)
}

func parseAccountIDFromURL(providerURL, fragment string) (string, error) {
	u, err := url.Parse(providerURL)
	if err != nil {
		return "", fmt.Errorf("could not parse provider url %q: %w", providerURL, err)
	}
	// example.genesysgo.net/abc parses as a bare path.
	if u.Host == "" && !strings.Contains(providerURL, "://") {
		if u, err = url.Parse("https://" + providerURL); err != nil {
			return "", fmt.Errorf("could not parse provider url %q: %w", providerURL, err)
		}
	}
	if !strings.Contains(strings.ToLower(u.Host), fragment) {
		return "", fmt.Errorf("%w: %s", ErrNotProviderURL, providerURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingAccountID, providerURL)
	}
	return last, nil
}
