package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultReadTries      = 3
	defaultConfirmTries   = 30
	defaultConfirmWait    = time.Second
	defaultRequestTimeout = 10 * time.Second
)

// Client implements Ledger against a fullnode REST API. View reads are
// retried with exponential backoff; submissions go out exactly once.
type Client struct {
	baseURL       string
	moduleAddress string
	httpClient    *http.Client
	logger        *zap.Logger

	readTries    uint
	confirmTries int
	confirmWait  time.Duration
}

var _ Ledger = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithConfirmPolicy sets how long WaitForTransaction polls before reporting
// the outcome as indeterminate.
func WithConfirmPolicy(attempts int, interval time.Duration) Option {
	return func(c *Client) {
		c.confirmTries = attempts
		c.confirmWait = interval
	}
}

// NewClient connects to the fullnode at baseURL. moduleAddress is the
// on-chain address publishing the creator_token module.
func NewClient(baseURL, moduleAddress string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		moduleAddress: moduleAddress,
		httpClient:    &http.Client{Timeout: defaultRequestTimeout},
		logger:        logger.Named("ledger"),
		readTries:     defaultReadTries,
		confirmTries:  defaultConfirmTries,
		confirmWait:   defaultConfirmWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetCurrentSupply(ctx context.Context, creator, tokenID string) (uint64, error) {
	return c.viewU64(ctx, "get_current_supply", creator, tokenID)
}

func (c *Client) GetReserve(ctx context.Context, creator, tokenID string) (uint64, error) {
	return c.viewU64(ctx, "get_reserve", creator, tokenID)
}

func (c *Client) GetTotalSupplyCeiling(ctx context.Context, creator, tokenID string) (uint64, error) {
	return c.viewU64(ctx, "get_total_supply", creator, tokenID)
}

type viewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// viewU64 calls a u64-returning view function. Reads are idempotent, so
// transient failures are retried with backoff.
func (c *Client) viewU64(ctx context.Context, viewFn, creator, tokenID string) (uint64, error) {
	function := fmt.Sprintf("%s::creator_token::%s", c.moduleAddress, viewFn)

	operation := func() (uint64, error) {
		body, err := json.Marshal(viewRequest{
			Function:      function,
			TypeArguments: []string{},
			Arguments:     []string{creator, tokenID},
		})
		if err != nil {
			return 0, backoff.Permanent(err)
		}
		raw, status, err := c.post(ctx, c.baseURL+"/v1/view", body)
		if err != nil {
			return 0, err
		}
		if status >= 400 && status < 500 {
			return 0, backoff.Permanent(fmt.Errorf("view %s: status %d: %s", viewFn, status, raw))
		}
		if status != http.StatusOK {
			return 0, fmt.Errorf("view %s: status %d", viewFn, status)
		}
		// View results come back as a JSON array; u64 values are strings.
		return gjson.GetBytes(raw, "0").Uint(), nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying ledger read",
			zap.String("view", viewFn),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.readTries),
		backoff.WithNotify(notify))
}

// SubmitTrade posts the entry-function payload once. It is never retried
// here: a timed-out submission may have landed, and only a fresh snapshot
// can disambiguate.
func (c *Client) SubmitTrade(ctx context.Context, req *SubmissionRequest) (TxID, error) {
	// buy_tokens takes the octas payment, sell_tokens the token amount;
	// both enforce the MinOutput floor atomically.
	amount := req.PaymentOctas
	if req.Function == "sell_tokens" {
		amount = req.TokenAmount
	}
	payload := map[string]any{
		"type":           "entry_function_payload",
		"sender":         req.Signer,
		"function":       fmt.Sprintf("%s::creator_token::%s", c.moduleAddress, req.Function),
		"type_arguments": []string{},
		"arguments": []string{
			req.Creator,
			strconv.FormatUint(amount, 10),
			strconv.FormatUint(req.MinOutput, 10),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	raw, status, err := c.post(ctx, c.baseURL+"/v1/transactions", body)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", req.Function, err)
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		return "", fmt.Errorf("submit %s: status %d: %s", req.Function, status, raw)
	}

	hash := gjson.GetBytes(raw, "hash").String()
	if hash == "" {
		return "", fmt.Errorf("submit %s: response carried no hash", req.Function)
	}
	c.logger.Info("trade submitted",
		zap.String("function", req.Function),
		zap.String("tx", hash),
		zap.Uint64("payment_octas", req.PaymentOctas),
		zap.Uint64("min_output", req.MinOutput))
	return TxID(hash), nil
}

// WaitForTransaction polls for the transaction by hash. Exhausting the
// attempts yields ErrConfirmationIndeterminate, not a failure.
func (c *Client) WaitForTransaction(ctx context.Context, tx TxID) (*TxInfo, error) {
	for attempt := 0; attempt < c.confirmTries; attempt++ {
		timer := time.NewTimer(c.confirmWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		info, found, err := c.lookupTransaction(ctx, tx)
		if err != nil {
			c.logger.Warn("transaction lookup failed",
				zap.String("tx", string(tx)),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		if !found {
			continue
		}
		if !info.Success {
			return info, fmt.Errorf("%w: %s", ErrTransactionFailed, info.VMStatus)
		}
		return info, nil
	}
	return nil, ErrConfirmationIndeterminate
}

func (c *Client) lookupTransaction(ctx context.Context, tx TxID) (*TxInfo, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/transactions/by_hash/%s", c.baseURL, tx), nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("lookup: status %d", resp.StatusCode)
	}
	// Pending transactions have no execution result yet.
	if gjson.GetBytes(raw, "type").String() == "pending_transaction" {
		return nil, false, nil
	}
	return &TxInfo{
		Hash:     tx,
		Success:  gjson.GetBytes(raw, "success").Bool(),
		VMStatus: gjson.GetBytes(raw, "vm_status").String(),
		Version:  gjson.GetBytes(raw, "version").Uint(),
	}, true, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return raw, resp.StatusCode, nil
}
