package wallet

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/olehkaliuzhnyi/walletcore/pkg/models"
)

// Wallet event types.
const (
	BalanceChange EventType = iota
	GenerateAddress
	ReceivedTransaction
)

// EventType tags the variants of Event.
type EventType int

func (et EventType) String() string {
	switch et {
	case BalanceChange:
		return "BalanceChange"
	case GenerateAddress:
		return "GenerateAddress"
	case ReceivedTransaction:
		return "ReceivedTransaction"
	default:
		return "Unknown"
	}
}

// Event is emitted through subscriber channels when the wallet cache
// observes an actual change.
type Event interface {
	Type() EventType
}

// BalanceChangeEvent carries a snapshot of the address state after a
// reconciliation detected a differing balance or pre-balance. It holds
// values, not the cached entity: subscribers read it concurrently with
// later reconciliation ticks.
type BalanceChangeEvent struct {
	AddressHex string
	Balance    decimal.Decimal
	PreBalance decimal.Decimal
}

func (e BalanceChangeEvent) Type() EventType { return BalanceChange }

// GenerateAddressEvent announces an address entering the cache for the
// first time.
type GenerateAddressEvent struct {
	AddressHex string
}

func (e GenerateAddressEvent) Type() EventType { return GenerateAddress }

// ReceivedTransactionEvent carries the full incoming transaction
// accepted by the merge rule, not the reduced form kept in the cache.
type ReceivedTransactionEvent struct {
	Transaction models.TransactionRecord
}

func (e ReceivedTransactionEvent) Type() EventType { return ReceivedTransaction }

const subscriberQueueSize = 100

// SubscriptionID identifies one subscriber on a Bus.
type SubscriptionID = uuid.UUID

// Bus fans wallet events out to subscribers. Publishing never blocks:
// a subscriber that stops draining its channel loses events rather than
// stalling a cache mutation.
type Bus struct {
	mu     sync.RWMutex
	subs   map[SubscriptionID]chan Event
	logger logrus.FieldLogger
}

// NewBus returns an empty event bus.
func NewBus(logger logrus.FieldLogger) *Bus {
	return &Bus{
		subs:   make(map[SubscriptionID]chan Event),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its id together with
// the channel events will be delivered on.
func (b *Bus) Subscribe() (SubscriptionID, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	ch := make(chan Event, subscriberQueueSize)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Publish delivers the event to every subscriber able to receive it.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.WithFields(logrus.Fields{
				"subscriber": id,
				"event":      event.Type().String(),
			}).Warn("subscriber queue full, dropping event")
		}
	}
}

// Close shuts down every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
