package wallet

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

// IndexedWallet layers index-based addressing on top of BaseWallet:
// a secondary index-to-hex map kept consistent with the primary cache,
// lazy derivation through a Keyring, and a strict type guard on the
// concrete address variant entering the cache.
//
// The wallet-level public hash is computed synchronously at
// construction; a wallet is fully usable as soon as its constructor
// returns.
type IndexedWallet struct {
	*BaseWallet
	keyring           Keyring
	indexToAddressHex map[uint32]string
	publicHash        string
	trustScore        float64
	trustScoreKnown   bool
}

// NewIndexedWallet returns an indexed wallet engine driven by the given
// derivation strategy.
func NewIndexedWallet(
	network models.Network, client NodeClient, keyring Keyring, logger logrus.FieldLogger,
) (*IndexedWallet, error) {
	publicHash, err := keyring.PublicHash()
	if err != nil {
		return nil, fmt.Errorf("compute public hash: %w", err)
	}

	w := &IndexedWallet{
		BaseWallet:        NewBaseWallet(network, client, logger),
		keyring:           keyring,
		indexToAddressHex: make(map[uint32]string),
		publicHash:        publicHash,
	}
	w.insertLocked = w.setKeyedAddressLocked
	return w, nil
}

// PublicHash returns the wallet's key material fingerprint.
func (w *IndexedWallet) PublicHash() string { return w.publicHash }

// setKeyedAddressLocked is the guarded insert every mutation path runs
// through, with the wallet lock held.
func (w *IndexedWallet) setKeyedAddressLocked(address Address) error {
	keyed, ok := address.(*KeyedAddress)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedAddressType, address)
	}
	w.setAddressLocked(keyed, true)
	w.indexToAddressHex[keyed.Index()] = keyed.AddressHex()
	return nil
}

// LoadAddresses bulk-loads initial addresses. Each entry must carry a
// derivation index; key material is re-derived from the index rather
// than trusted from the input. No events are emitted.
func (w *IndexedWallet) LoadAddresses(addresses []Address) error {
	for _, addr := range addresses {
		if err := w.SetInitialAddressToMap(addr); err != nil {
			return err
		}
	}
	return nil
}

// SetInitialAddressToMap converts an externally supplied indexed
// address into the wallet's own representation and inserts it. Part of
// the cold-start path, so the insert is silent.
func (w *IndexedWallet) SetInitialAddressToMap(address Address) error {
	keyed, err := w.keyring.AddressFromIndexed(address)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setAddressLocked(keyed, false)
	w.indexToAddressHex[keyed.Index()] = keyed.AddressHex()
	return nil
}

// GetIndexByAddress returns the derivation index of a cached address.
func (w *IndexedWallet) GetIndexByAddress(addressHex string) (uint32, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	addr, ok := w.addressMap[addressHex]
	if !ok {
		return 0, false
	}
	indexed, ok := addr.(Indexed)
	if !ok {
		return 0, false
	}
	return indexed.Index(), true
}

// GetAddressByIndex returns the cached address for the index, deriving
// and caching it on first use. Repeated calls after the first return
// the same entity without re-deriving.
func (w *IndexedWallet) GetAddressByIndex(index uint32) (*KeyedAddress, error) {
	w.mu.RLock()
	hex, ok := w.indexToAddressHex[index]
	if ok {
		cached := w.addressMap[hex]
		w.mu.RUnlock()
		if keyed, isKeyed := cached.(*KeyedAddress); isKeyed {
			return keyed, nil
		}
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedAddressType, cached)
	}
	w.mu.RUnlock()

	return w.GenerateAndSetAddressByIndex(index)
}

// GenerateAndSetAddressByIndex always derives fresh, bypassing the
// cache check, then inserts and returns the new entity.
func (w *IndexedWallet) GenerateAndSetAddressByIndex(index uint32) (*KeyedAddress, error) {
	keyed, err := w.keyring.GenerateAddressByIndex(index)
	if err != nil {
		return nil, fmt.Errorf("generate address %d: %w", index, err)
	}
	if err := w.SetAddressToMap(keyed); err != nil {
		return nil, err
	}
	return keyed, nil
}

// AutoDiscoverAddresses asks the discovery service for every address
// known to belong to this wallet, reconciles balances over the
// discovered set and returns the resulting address map.
func (w *IndexedWallet) AutoDiscoverAddresses(ctx context.Context) (map[string]Address, error) {
	discovered, err := w.client.DiscoverAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover addresses: %w", err)
	}

	entities := make([]Address, 0, len(discovered))
	for _, d := range discovered {
		keyed, err := w.keyring.AddressFromIndexed(
			NewIndexedCachedAddress(d.AddressHex, d.Index, d.Balance, d.PreBalance),
		)
		if err != nil {
			return nil, err
		}
		entities = append(entities, keyed)
	}

	if err := w.CheckBalancesOfAddresses(ctx, entities); err != nil {
		return nil, err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make(map[string]Address, len(w.addressMap))
	for hex, addr := range w.addressMap {
		result[hex] = addr
	}
	return result, nil
}

// GetUserTrustScore fetches the account trust score, validating the
// response shape, and caches it for subsequent calls.
func (w *IndexedWallet) GetUserTrustScore(ctx context.Context) (float64, error) {
	w.mu.RLock()
	if w.trustScoreKnown {
		score := w.trustScore
		w.mu.RUnlock()
		return score, nil
	}
	w.mu.RUnlock()

	resp, err := w.client.FetchTrustScore(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch trust score: %w", err)
	}
	if resp == nil || resp.Data == nil || resp.Data.TrustScore == nil {
		return 0, ErrMissingTrustScore
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.trustScore = *resp.Data.TrustScore
	w.trustScoreKnown = true
	return w.trustScore, nil
}
