package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

// NodeClient is the boundary to the external services a wallet
// reconciles against. Implementations perform the actual I/O; the
// wallet never retries or times out on its own.
type NodeClient interface {
	// FetchBalances returns a balance snapshot for the given addresses,
	// keyed by address hex.
	FetchBalances(ctx context.Context, addressHexes []string) (map[string]models.Balance, error)
	// FetchTransactionHistory returns all transactions touching the
	// given addresses.
	FetchTransactionHistory(ctx context.Context, addressHexes []string) ([]models.TransactionRecord, error)
	// DiscoverAddresses returns every address known to belong to the
	// account, with the index each was derived from.
	DiscoverAddresses(ctx context.Context) ([]models.DiscoveredAddress, error)
	// FetchTrustScore returns the account trust score envelope.
	FetchTrustScore(ctx context.Context) (*models.TrustScoreResponse, error)
}

// BaseWallet owns the address and transaction caches of a non-indexed
// wallet and is the sole emitter of change events. Balance updates
// follow a diff-then-notify policy: the event stream is a true change
// log, never an echo of every snapshot.
//
// External fetches complete strictly before the caches are touched, so
// every cache mutation is atomic with respect to the others. Two
// overlapping reconciliations over the same addresses are last-write-wins.
type BaseWallet struct {
	mu             sync.RWMutex
	network        models.Network
	client         NodeClient
	bus            *Bus
	logger         logrus.FieldLogger
	addressMap     map[string]Address
	transactionMap map[string]models.ReducedTransaction

	// insertLocked is the single entry point for cache inserts, invoked
	// with mu held. The indexed wallet repoints it at its guarded
	// variant so the secondary index can never fall out of sync with
	// the primary map.
	insertLocked func(Address) error
}

// NewBaseWallet returns an empty wallet store bound to the given network.
func NewBaseWallet(network models.Network, client NodeClient, logger logrus.FieldLogger) *BaseWallet {
	w := &BaseWallet{
		network:        network,
		client:         client,
		bus:            NewBus(logger),
		logger:         logger.WithField("component", "wallet"),
		addressMap:     make(map[string]Address),
		transactionMap: make(map[string]models.ReducedTransaction),
	}
	w.insertLocked = func(addr Address) error {
		w.setAddressLocked(addr, true)
		return nil
	}
	return w
}

// Network returns the network the wallet was constructed for.
func (w *BaseWallet) Network() models.Network { return w.network }

// Subscribe registers an event subscriber on the wallet's bus.
func (w *BaseWallet) Subscribe() (SubscriptionID, <-chan Event) {
	return w.bus.Subscribe()
}

// Unsubscribe removes an event subscriber.
func (w *BaseWallet) Unsubscribe(id SubscriptionID) {
	w.bus.Unsubscribe(id)
}

// Close tears down the event bus.
func (w *BaseWallet) Close() { w.bus.Close() }

// LoadAddresses bulk-inserts initial address entities into the cache.
// A bulk load is a cold start, not a change: no events are emitted.
func (w *BaseWallet) LoadAddresses(addresses []Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, addr := range addresses {
		w.setAddressLocked(addr, false)
	}
	return nil
}

// IsAddressExists reports whether the address is cached.
func (w *BaseWallet) IsAddressExists(addressHex string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.addressMap[addressHex]
	return ok
}

// GetAddressByAddressHex returns the cached entity for the given hex.
func (w *BaseWallet) GetAddressByAddressHex(addressHex string) (Address, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	addr, ok := w.addressMap[addressHex]
	return addr, ok
}

// Addresses returns a snapshot of every cached address entity.
func (w *BaseWallet) Addresses() []Address {
	w.mu.RLock()
	defer w.mu.RUnlock()
	addrs := make([]Address, 0, len(w.addressMap))
	for _, addr := range w.addressMap {
		addrs = append(addrs, addr)
	}
	return addrs
}

// SetAddressToMap inserts the entity into the cache, replacing any
// previous entity for the same hex. The first time a hex is seen a
// GenerateAddress event is emitted.
func (w *BaseWallet) SetAddressToMap(address Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.insertLocked(address)
}

func (w *BaseWallet) setAddressLocked(address Address, announce bool) {
	hex := address.AddressHex()
	_, existed := w.addressMap[hex]
	w.addressMap[hex] = address
	if announce && !existed {
		w.bus.Publish(GenerateAddressEvent{AddressHex: hex})
	}
}

// CheckBalancesOfAddresses fetches a balance snapshot for the given
// addresses and reconciles it against the cache. An address is updated,
// and a BalanceChange event emitted, only when it is not yet cached or
// when either balance differs by exact decimal comparison.
func (w *BaseWallet) CheckBalancesOfAddresses(ctx context.Context, addresses []Address) error {
	if len(addresses) == 0 {
		return nil
	}

	hexes := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		hexes = append(hexes, addr.AddressHex())
	}

	snapshot, err := w.client.FetchBalances(ctx, hexes)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, addr := range addresses {
		balance, ok := snapshot[addr.AddressHex()]
		if !ok {
			continue
		}

		cached, exists := w.addressMap[addr.AddressHex()]
		if exists &&
			cached.Balance().Equal(balance.Balance) &&
			cached.PreBalance().Equal(balance.PreBalance) {
			continue
		}

		addr.SetBalance(balance.Balance)
		addr.SetPreBalance(balance.PreBalance)
		if err := w.insertLocked(addr); err != nil {
			return err
		}

		w.logger.WithFields(logrus.Fields{
			"addressHex": addr.AddressHex(),
			"balance":    balance.Balance.String(),
			"preBalance": balance.PreBalance.String(),
		}).Debug("balance changed")
		w.bus.Publish(BalanceChangeEvent{
			AddressHex: addr.AddressHex(),
			Balance:    balance.Balance,
			PreBalance: balance.PreBalance,
		})
	}
	return nil
}

// GetTotalBalance sums balance and pre-balance across all cached
// addresses with exact decimal addition. An empty cache yields zeros.
func (w *BaseWallet) GetTotalBalance() models.Balance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var total models.Balance
	for _, addr := range w.addressMap {
		total.Balance = total.Balance.Add(addr.Balance())
		total.PreBalance = total.PreBalance.Add(addr.PreBalance())
	}
	return total
}

// LoadTransactionHistory bulk-inserts reduced records, unconditionally
// overwriting prior entries. Used for cold-start hydration only.
func (w *BaseWallet) LoadTransactionHistory(transactions []models.ReducedTransaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, tx := range transactions {
		w.transactionMap[tx.Hash] = tx
	}
}

// GetTransactionHistory asks the history service for all transactions
// touching the wallet's known addresses and merges each into the cache.
func (w *BaseWallet) GetTransactionHistory(ctx context.Context) error {
	hexes := w.addressHexes()
	if len(hexes) == 0 {
		return nil
	}

	transactions, err := w.client.FetchTransactionHistory(ctx, hexes)
	if err != nil {
		return fmt.Errorf("fetch transaction history: %w", err)
	}

	for _, tx := range transactions {
		w.SetTransaction(tx)
	}
	return nil
}

func (w *BaseWallet) addressHexes() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	hexes := make([]string, 0, len(w.addressMap))
	for hex := range w.addressMap {
		hexes = append(hexes, hex)
	}
	return hexes
}

// GetTransactionByHash returns the cached reduced record for the hash.
func (w *BaseWallet) GetTransactionByHash(hash string) (models.ReducedTransaction, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tx, ok := w.transactionMap[hash]
	return tx, ok
}

// SetTransaction merges one transaction into the cache. A record whose
// hash and consensus update time are both already cached is fully
// processed: the call is a deliberate no-op and no event is re-emitted.
// Otherwise the reduced form replaces any prior entry and a
// ReceivedTransaction event carries the full incoming record.
func (w *BaseWallet) SetTransaction(tx models.TransactionRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()

	existing, ok := w.transactionMap[tx.Hash]
	if ok && existing.TransactionConsensusUpdateTime.Equal(tx.TransactionConsensusUpdateTime) {
		return
	}

	w.transactionMap[tx.Hash] = tx.Reduce()
	w.logger.WithFields(logrus.Fields{
		"hash":                tx.Hash,
		"consensusUpdateTime": tx.TransactionConsensusUpdateTime,
	}).Debug("transaction merged")
	w.bus.Publish(ReceivedTransactionEvent{Transaction: tx})
}
