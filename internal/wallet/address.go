package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/shopspring/decimal"
)

// Address is the capability set shared by every address variant held in
// a wallet cache. Implementations are value holders; all mutation goes
// through the balance reconciliation path.
type Address interface {
	AddressHex() string
	Balance() decimal.Decimal
	PreBalance() decimal.Decimal
	SetBalance(decimal.Decimal)
	SetPreBalance(decimal.Decimal)
}

// Indexed is implemented by address variants that carry the derivation
// index they were generated from.
type Indexed interface {
	Index() uint32
}

// CachedAddress is the plain variant: an address known only by its hex
// and balances, typically fed in from an external snapshot.
type CachedAddress struct {
	addressHex string
	balance    decimal.Decimal
	preBalance decimal.Decimal
}

// NewCachedAddress returns a plain address entity with zero balances.
func NewCachedAddress(addressHex string) *CachedAddress {
	return &CachedAddress{addressHex: addressHex}
}

func (a *CachedAddress) AddressHex() string          { return a.addressHex }
func (a *CachedAddress) Balance() decimal.Decimal    { return a.balance }
func (a *CachedAddress) PreBalance() decimal.Decimal { return a.preBalance }

func (a *CachedAddress) SetBalance(b decimal.Decimal)    { a.balance = b }
func (a *CachedAddress) SetPreBalance(b decimal.Decimal) { a.preBalance = b }

// IndexedCachedAddress is a CachedAddress that also carries its
// derivation index. It is the input shape for bulk loads and discovery:
// the wallet never trusts it as authoritative, the keyring re-derives
// the key material from the index before it enters the cache.
type IndexedCachedAddress struct {
	CachedAddress
	index uint32
}

// NewIndexedCachedAddress returns an indexed address entity with the
// given balances.
func NewIndexedCachedAddress(
	addressHex string, index uint32, balance, preBalance decimal.Decimal,
) *IndexedCachedAddress {
	return &IndexedCachedAddress{
		CachedAddress: CachedAddress{
			addressHex: addressHex,
			balance:    balance,
			preBalance: preBalance,
		},
		index: index,
	}
}

func (a *IndexedCachedAddress) Index() uint32 { return a.index }

// KeyedAddress is the concrete variant produced by a Keyring: an indexed
// address together with the secp256k1 key pair it was derived from.
// It is the only variant an indexed wallet accepts into its cache.
type KeyedAddress struct {
	addressHex string
	index      uint32
	balance    decimal.Decimal
	preBalance decimal.Decimal
	privKey    *btcec.PrivateKey
	pubKey     *btcec.PublicKey
}

func newKeyedAddress(
	addressHex string, index uint32, priv *btcec.PrivateKey, pub *btcec.PublicKey,
) *KeyedAddress {
	return &KeyedAddress{
		addressHex: addressHex,
		index:      index,
		privKey:    priv,
		pubKey:     pub,
	}
}

func (a *KeyedAddress) AddressHex() string          { return a.addressHex }
func (a *KeyedAddress) Index() uint32               { return a.index }
func (a *KeyedAddress) Balance() decimal.Decimal    { return a.balance }
func (a *KeyedAddress) PreBalance() decimal.Decimal { return a.preBalance }

func (a *KeyedAddress) SetBalance(b decimal.Decimal)    { a.balance = b }
func (a *KeyedAddress) SetPreBalance(b decimal.Decimal) { a.preBalance = b }

// PublicKey returns the secp256k1 public key bound to this address.
func (a *KeyedAddress) PublicKey() *btcec.PublicKey { return a.pubKey }
