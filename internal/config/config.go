// Package config loads daemon configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

// Environment keys, resolved with the WALLETCORE_ prefix.
const (
	// NodeEndpointKey is the base URL of the wallet node HTTP API.
	NodeEndpointKey = "NODE_ENDPOINT"
	// NetworkKey selects mainnet or testnet.
	NetworkKey = "NETWORK"
	// SeedKey is the wallet seed as a 64 character hex string.
	SeedKey = "SEED"
	// MnemonicKey is an alternative to SeedKey: a BIP-39 mnemonic.
	MnemonicKey = "MNEMONIC"
	// PollIntervalKey is the balance reconciliation interval.
	PollIntervalKey = "POLL_INTERVAL"
	// HistoryEveryKey reconciles history once per that many balance ticks.
	HistoryEveryKey = "HISTORY_EVERY"
	// RequestTimeoutKey bounds a single node request.
	RequestTimeoutKey = "REQUEST_TIMEOUT"
	// RateLimitKey is the number of node requests allowed per second.
	RateLimitKey = "RATE_LIMIT"
	// RateBurstKey is the node request burst size.
	RateBurstKey = "RATE_BURST"
	// LogLevelKey is a logrus level name, e.g. "info" or "debug".
	LogLevelKey = "LOG_LEVEL"
)

// Config is the resolved daemon configuration.
type Config struct {
	NodeEndpoint   string
	Network        models.Network
	Seed           string
	Mnemonic       string
	PollInterval   time.Duration
	HistoryEvery   int
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	LogLevel       string
}

// Load reads the configuration from the environment, applying defaults
// for unset values.
func Load() (Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix("WALLETCORE")
	vip.AutomaticEnv()

	vip.SetDefault(NodeEndpointKey, "http://localhost:7070")
	vip.SetDefault(NetworkKey, string(models.NetworkMainnet))
	vip.SetDefault(PollIntervalKey, 5*time.Second)
	vip.SetDefault(HistoryEveryKey, 10)
	vip.SetDefault(RequestTimeoutKey, 15*time.Second)
	vip.SetDefault(RateLimitKey, 2.0)
	vip.SetDefault(RateBurstKey, 1)
	vip.SetDefault(LogLevelKey, "info")

	network := models.Network(vip.GetString(NetworkKey))
	switch network {
	case models.NetworkMainnet, models.NetworkTestnet:
	default:
		return Config{}, fmt.Errorf("unknown network %q", network)
	}

	return Config{
		NodeEndpoint:   vip.GetString(NodeEndpointKey),
		Network:        network,
		Seed:           vip.GetString(SeedKey),
		Mnemonic:       vip.GetString(MnemonicKey),
		PollInterval:   vip.GetDuration(PollIntervalKey),
		HistoryEvery:   vip.GetInt(HistoryEveryKey),
		RequestTimeout: vip.GetDuration(RequestTimeoutKey),
		RateLimit:      vip.GetFloat64(RateLimitKey),
		RateBurst:      vip.GetInt(RateBurstKey),
		LogLevel:       vip.GetString(LogLevelKey),
	}, nil
}
