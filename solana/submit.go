package shdw_drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type transactionRequest struct {
	Transaction string `json:"transaction"`
	Commitment  string `json:"commitment"`
}

// submit posts a signed, encoded transaction to the coordinator and decodes
// the operation specific response into out.
func (c *Client) submit(ctx context.Context, path, encodedTx string, out interface{}) error {
	return c.postJSON(ctx, path, transactionRequest{
		Transaction: encodedTx,
		Commitment:  Commitment,
	}, out)
}

// postJSON posts body as JSON to the coordinator. Non-2xx answers become a
// *ServerError carrying the body verbatim.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := strings.TrimRight(c.cfg.Endpoint, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if err := ReadResponse(path, resp, out); err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			c.logger.Debug("coordinator rejected request",
				zap.String("path", path),
				zap.Int("status", serverErr.Status),
			)
		}
		return err
	}
	return nil
}

// ReadResponse reads an HTTP response on behalf of op. A non-2xx status
// becomes a *ServerError carrying the body, and a 2xx body is decoded into
// out unless out is nil. The caller still closes resp.Body.
func ReadResponse(op string, resp *http.Response, out interface{}) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Status: resp.StatusCode, Message: rawMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// rawMessage keeps a JSON body untouched and quotes anything else so it
// still round-trips as JSON.
func rawMessage(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}
