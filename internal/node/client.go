// Package node implements the HTTP boundary to the external services a
// wallet reconciles against: balances, transaction history, address
// discovery and trust score. It performs no retries; callers own retry
// and timeout policy.
package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnexpectedStatus is returned when the node answers outside 2xx.
var ErrUnexpectedStatus = errors.New("unexpected response status")

const defaultRequestTimeout = 15 * time.Second

// HTTPClient talks JSON over HTTP to a wallet node.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
	logger  logrus.FieldLogger
}

// NewHTTPClient returns a client for the node at baseURL. A zero
// timeout falls back to the default request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		timeout: timeout,
		client:  &fasthttp.Client{},
		logger:  logger.WithField("component", "node_client"),
	}
}

type addressesRequest struct {
	Addresses []string `json:"addresses"`
}

type balanceEntry struct {
	Balance    string `json:"balance"`
	PreBalance string `json:"preBalance"`
}

type balancesResponse struct {
	AddressBalances map[string]balanceEntry `json:"addressBalances"`
}

// FetchBalances returns the balance snapshot for the given addresses.
func (c *HTTPClient) FetchBalances(
	ctx context.Context, addressHexes []string,
) (map[string]models.Balance, error) {
	body, err := json.Marshal(addressesRequest{Addresses: addressHexes})
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, fasthttp.MethodPost, "/balance", body)
	if err != nil {
		return nil, err
	}

	var resp balancesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}

	balances := make(map[string]models.Balance, len(resp.AddressBalances))
	for hex, entry := range resp.AddressBalances {
		balance, err := decimal.NewFromString(entry.Balance)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", hex, err)
		}
		preBalance, err := decimal.NewFromString(entry.PreBalance)
		if err != nil {
			return nil, fmt.Errorf("pre balance of %s: %w", hex, err)
		}
		balances[hex] = models.Balance{Balance: balance, PreBalance: preBalance}
	}
	return balances, nil
}

type historyResponse struct {
	Transactions []models.TransactionRecord `json:"transactions"`
}

// FetchTransactionHistory returns all transactions touching the given
// addresses.
func (c *HTTPClient) FetchTransactionHistory(
	ctx context.Context, addressHexes []string,
) ([]models.TransactionRecord, error) {
	body, err := json.Marshal(addressesRequest{Addresses: addressHexes})
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, fasthttp.MethodPost, "/transaction/addresses", body)
	if err != nil {
		return nil, err
	}

	var resp historyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode transaction history: %w", err)
	}
	return resp.Transactions, nil
}

type discoveryResponse struct {
	Addresses []models.DiscoveredAddress `json:"addresses"`
}

// DiscoverAddresses returns every address the node knows to belong to
// the account.
func (c *HTTPClient) DiscoverAddresses(ctx context.Context) ([]models.DiscoveredAddress, error) {
	raw, err := c.do(ctx, fasthttp.MethodGet, "/wallet/addresses", nil)
	if err != nil {
		return nil, err
	}

	var resp discoveryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode discovered addresses: %w", err)
	}
	return resp.Addresses, nil
}

// FetchTrustScore returns the account trust score envelope as-is; shape
// validation belongs to the wallet.
func (c *HTTPClient) FetchTrustScore(ctx context.Context) (*models.TrustScoreResponse, error) {
	raw, err := c.do(ctx, fasthttp.MethodGet, "/wallet/trustscore", nil)
	if err != nil {
		return nil, err
	}

	var resp models.TrustScoreResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode trust score: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.logger.WithFields(logrus.Fields{"method": method, "path": path}).Debug("node request")
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() < fasthttp.StatusOK || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, method, path, resp.StatusCode())
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}
