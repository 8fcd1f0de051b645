package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL, time.Second, testLogger())
}

func TestFetchBalances(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/balance", r.URL.Path)
		w.Write([]byte(`{
			"addressBalances": {
				"0xaa": {"balance": "1.5", "preBalance": "0.5"},
				"0xbb": {"balance": "0", "preBalance": "0"}
			}
		}`))
	}))

	balances, err := client.FetchBalances(context.Background(), []string{"0xaa", "0xbb"})
	require.NoError(t, err)
	require.Len(t, balances, 2)
	require.True(t, balances["0xaa"].Balance.Equal(decimal.RequireFromString("1.5")))
	require.True(t, balances["0xaa"].PreBalance.Equal(decimal.RequireFromString("0.5")))
	require.True(t, balances["0xbb"].Balance.IsZero())
}

func TestFetchBalances_MalformedDecimal(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"addressBalances": {"0xaa": {"balance": "abc", "preBalance": "0"}}}`))
	}))

	_, err := client.FetchBalances(context.Background(), []string{"0xaa"})
	require.Error(t, err)
}

func TestFetchTransactionHistory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/addresses", r.URL.Path)
		w.Write([]byte(`{
			"transactions": [{
				"hash": "h1",
				"amount": "7",
				"createTime": "2024-01-01T00:00:00Z",
				"transactionConsensusUpdateTime": "2024-01-01T00:01:00Z"
			}]
		}`))
	}))

	transactions, err := client.FetchTransactionHistory(context.Background(), []string{"0xaa"})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Equal(t, "h1", transactions[0].Hash)
	require.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("7")))
	require.Equal(t, 2024, transactions[0].CreateTime.Year())
}

func TestDiscoverAddresses(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/wallet/addresses", r.URL.Path)
		w.Write([]byte(`{
			"addresses": [
				{"addressHex": "0xaa", "index": 0, "balance": "1", "preBalance": "0"},
				{"addressHex": "0xbb", "index": 1, "balance": "0", "preBalance": "0"}
			]
		}`))
	}))

	discovered, err := client.DiscoverAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, discovered, 2)
	require.Equal(t, uint32(1), discovered[1].Index)
}

func TestFetchTrustScore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallet/trustscore", r.URL.Path)
		w.Write([]byte(`{"data": {"trustScore": 42.5}}`))
	}))

	resp, err := client.FetchTrustScore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	require.NotNil(t, resp.Data.TrustScore)
	require.Equal(t, 42.5, *resp.Data.TrustScore)
}

func TestFetchTrustScore_EmptyEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	resp, err := client.FetchTrustScore(context.Background())
	require.NoError(t, err)
	require.Nil(t, resp.Data, "shape validation belongs to the wallet")
}

func TestUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchTrustScore(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestCanceledContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchTrustScore(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
