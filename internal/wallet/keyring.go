package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/sha3"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

// seedLength is the number of hex characters in a wallet seed.
const seedLength = 64

// publicHashVersion prefixes the base58check public hash rendering.
const publicHashVersion = 0x00

// BIP-44 coin types per network.
var coinTypeByNetwork = map[models.Network]uint32{
	models.NetworkMainnet: 60,
	models.NetworkTestnet: 1,
}

// Keyring is the derivation strategy composed into the indexed wallet
// engine: it derives key material by index, computes the wallet-level
// public hash and signs messages. Implementations must be pure
// functions of (seed, index).
type Keyring interface {
	// GenerateAddressByIndex derives a fresh address entity for the index.
	GenerateAddressByIndex(index uint32) (*KeyedAddress, error)
	// AddressFromIndexed re-derives the key material for the index the
	// given address carries and copies its balances over. Caller-supplied
	// balance data is trusted; caller-supplied key material is not.
	AddressFromIndexed(address Address) (*KeyedAddress, error)
	// PublicHash returns the fingerprint of the wallet's key material.
	PublicHash() (string, error)
	// SignMessage signs the message with the given address's key pair.
	SignMessage(message []byte, address *KeyedAddress) ([]byte, error)
}

// seedKeyring derives secp256k1 key pairs from a 32-byte seed at
// m/44'/{coinType}'/0'/0/{index}.
type seedKeyring struct {
	master   *bip32.Key
	coinType uint32
}

func newSeedKeyring(seedHex string, network models.Network) (*seedKeyring, error) {
	if len(seedHex) != seedLength {
		return nil, ErrInvalidSeed
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, ErrInvalidSeed
	}

	coinType, ok := coinTypeByNetwork[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	return &seedKeyring{master: master, coinType: coinType}, nil
}

func (k *seedKeyring) GenerateAddressByIndex(index uint32) (*KeyedAddress, error) {
	child, err := k.deriveKey(index)
	if err != nil {
		return nil, err
	}

	priv, pub := btcec.PrivKeyFromBytes(child.Key)
	return newKeyedAddress(addressHexFromPubKey(pub), index, priv, pub), nil
}

func (k *seedKeyring) AddressFromIndexed(address Address) (*KeyedAddress, error) {
	indexed, ok := address.(Indexed)
	if !ok {
		return nil, ErrMissingAddressIndex
	}

	derived, err := k.GenerateAddressByIndex(indexed.Index())
	if err != nil {
		return nil, err
	}
	derived.SetBalance(address.Balance())
	derived.SetPreBalance(address.PreBalance())
	return derived, nil
}

// PublicHash renders the master public key in base58check form, used as
// a wallet-level identifier distinct from any single address.
func (k *seedKeyring) PublicHash() (string, error) {
	pub := k.master.PublicKey()
	if len(pub.Key) == 0 {
		return "", fmt.Errorf("master public key is empty")
	}
	return base58.CheckEncode(pub.Key, publicHashVersion), nil
}

func (k *seedKeyring) SignMessage(message []byte, address *KeyedAddress) ([]byte, error) {
	digest := keccak256(message)
	sig := ecdsa.Sign(address.privKey, digest)
	return sig.Serialize(), nil
}

// deriveKey walks m/44'/{coinType}'/0'/0/{index}.
func (k *seedKeyring) deriveKey(index uint32) (*bip32.Key, error) {
	purpose, err := k.master.NewChildKey(bip32.FirstHardenedChild + 44)
	if err != nil {
		return nil, fmt.Errorf("derive purpose: %w", err)
	}

	coin, err := purpose.NewChildKey(bip32.FirstHardenedChild + k.coinType)
	if err != nil {
		return nil, fmt.Errorf("derive coin: %w", err)
	}

	account, err := coin.NewChildKey(bip32.FirstHardenedChild + 0)
	if err != nil {
		return nil, fmt.Errorf("derive account: %w", err)
	}

	change, err := account.NewChildKey(0)
	if err != nil {
		return nil, fmt.Errorf("derive change: %w", err)
	}

	child, err := change.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child: %w", err)
	}
	return child, nil
}

// addressHexFromPubKey renders an address as the keccak-160 of the
// uncompressed public key, 0x-prefixed.
func addressHexFromPubKey(pub *btcec.PublicKey) string {
	uncompressed := pub.SerializeUncompressed()
	hash := keccak256(uncompressed[1:]) // skip the 0x04 prefix
	return fmt.Sprintf("0x%s", hex.EncodeToString(hash[12:]))
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
