package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tyler-smith/go-bip39"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

// Opts carries the construction parameters of a Wallet. Exactly one of
// the two credential modes must be supplied: a direct 64 character hex
// seed, or a user secret with server key from which the seed is derived.
type Opts struct {
	Network    models.Network
	Seed       string
	UserSecret string
	ServerKey  []byte
}

func (o Opts) validate() error {
	hasSeed := o.Seed != ""
	hasPair := o.UserSecret != "" || len(o.ServerKey) > 0
	if !hasSeed && !hasPair {
		return ErrMissingCredentials
	}
	if hasSeed && hasPair {
		return ErrConflictingCredentials
	}
	if hasPair && (o.UserSecret == "" || len(o.ServerKey) == 0) {
		return ErrMissingCredentials
	}
	return nil
}

// Wallet is the concrete hierarchical-deterministic wallet: an indexed
// engine bound to a seed-backed keyring.
type Wallet struct {
	*IndexedWallet
}

// New constructs a wallet from the given options. The public hash is
// available as soon as New returns.
func New(opts Opts, client NodeClient, logger logrus.FieldLogger) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == "" {
		seed = SeedFromSecret(opts.UserSecret, opts.ServerKey)
	}

	keyring, err := newSeedKeyring(seed, opts.Network)
	if err != nil {
		return nil, err
	}

	indexed, err := NewIndexedWallet(opts.Network, client, keyring, logger)
	if err != nil {
		return nil, err
	}
	return &Wallet{IndexedWallet: indexed}, nil
}

// FromMnemonic constructs a wallet from a BIP-39 mnemonic by reducing
// its seed to the wallet seed format.
func FromMnemonic(
	mnemonic string, network models.Network, client NodeClient, logger logrus.FieldLogger,
) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := hex.EncodeToString(keccak256(bip39.NewSeed(mnemonic, "")))
	return New(Opts{Network: network, Seed: seed}, client, logger)
}

// SeedFromSecret derives a wallet seed by concatenating the user secret
// with a fixed-width hex encoding of the server key and hashing the
// combined string.
func SeedFromSecret(userSecret string, serverKey []byte) string {
	combined := userSecret + fmt.Sprintf("%064x", serverKey)
	return hex.EncodeToString(keccak256([]byte(combined)))
}

// GenerateAddressByIndex derives the address entity for the index
// without touching the cache. It is a pure function of (seed, index).
func (w *Wallet) GenerateAddressByIndex(index uint32) (*KeyedAddress, error) {
	return w.keyring.GenerateAddressByIndex(index)
}

// GetAddressFromIndexedAddress re-derives the key pair for the index
// carried by the given address and copies its balances onto the fresh
// entity. Externally constructed addresses are never authoritative for
// identity.
func (w *Wallet) GetAddressFromIndexedAddress(address Address) (*KeyedAddress, error) {
	return w.keyring.AddressFromIndexed(address)
}

// SignMessage signs the message with the key pair of the given address,
// or with the wallet's root key pair (index 0) when no address hex is
// passed. Signing with an unknown address hex fails.
func (w *Wallet) SignMessage(message []byte, addressHex ...string) ([]byte, error) {
	var keyed *KeyedAddress
	if len(addressHex) > 0 && addressHex[0] != "" {
		cached, ok := w.GetAddressByAddressHex(addressHex[0])
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAddressNotFound, addressHex[0])
		}
		keyed, ok = cached.(*KeyedAddress)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnexpectedAddressType, cached)
		}
	} else {
		root, err := w.GetAddressByIndex(0)
		if err != nil {
			return nil, err
		}
		keyed = root
	}
	return w.keyring.SignMessage(message, keyed)
}
