package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Network represents the chain environment a wallet is bound to.
// It is fixed at construction and never changes afterwards.
type Network string

// Supported networks.
const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Balance is a confirmed/previous balance pair for a single address.
// Amounts are exact decimals; no float arithmetic is ever applied to them.
type Balance struct {
	Balance    decimal.Decimal `json:"balance"`
	PreBalance decimal.Decimal `json:"preBalance"`
}

// TransactionRecord is a full transaction as reported by the history
// service. Only the fields of ReducedTransaction are retained in the
// wallet cache; the rest is available to event subscribers only.
type TransactionRecord struct {
	Hash                           string          `json:"hash"`
	Amount                         decimal.Decimal `json:"amount"`
	SenderHex                      string          `json:"senderHex"`
	ReceiverHex                    string          `json:"receiverHex"`
	Status                         string          `json:"status"`
	CreateTime                     time.Time       `json:"createTime"`
	TransactionConsensusUpdateTime time.Time       `json:"transactionConsensusUpdateTime"`
}

// Reduce strips a record down to the fields kept for dedup and ordering.
func (t TransactionRecord) Reduce() ReducedTransaction {
	return ReducedTransaction{
		Hash:                           t.Hash,
		CreateTime:                     t.CreateTime,
		TransactionConsensusUpdateTime: t.TransactionConsensusUpdateTime,
	}
}

// ReducedTransaction is the cached form of a transaction, keyed by hash.
type ReducedTransaction struct {
	Hash                           string    `json:"hash"`
	CreateTime                     time.Time `json:"createTime"`
	TransactionConsensusUpdateTime time.Time `json:"transactionConsensusUpdateTime"`
}

// DiscoveredAddress is an address entity returned by the discovery
// service: the server-side scan knows both the hex and the index it was
// derived from, plus the balances it last observed.
type DiscoveredAddress struct {
	AddressHex string          `json:"addressHex"`
	Index      uint32          `json:"index"`
	Balance    decimal.Decimal `json:"balance"`
	PreBalance decimal.Decimal `json:"preBalance"`
}

// TrustScoreData is the payload of a trust score response.
// TrustScore is a pointer so a present-but-empty payload can be told
// apart from a real zero score.
type TrustScoreData struct {
	TrustScore *float64 `json:"trustScore"`
}

// TrustScoreResponse is the envelope returned by the trust score service.
type TrustScoreResponse struct {
	Data *TrustScoreData `json:"data"`
}
