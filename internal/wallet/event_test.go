package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishToAllSubscribers(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	_, first := bus.Subscribe()
	_, second := bus.Subscribe()

	bus.Publish(GenerateAddressEvent{AddressHex: "0xaa"})

	for _, ch := range []<-chan Event{first, second} {
		ev := <-ch
		require.Equal(t, GenerateAddress, ev.Type())
		require.Equal(t, "0xaa", ev.(GenerateAddressEvent).AddressHex)
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	id, ch := bus.Subscribe()
	bus.Unsubscribe(id)

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(GenerateAddressEvent{AddressHex: "0xbb"})
}

func TestBus_SaturatedSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	_, ch := bus.Subscribe()
	for i := 0; i < subscriberQueueSize+10; i++ {
		bus.Publish(GenerateAddressEvent{AddressHex: "0xcc"})
	}
	require.Len(t, ch, subscriberQueueSize)
}

func TestEventType_String(t *testing.T) {
	require.Equal(t, "BalanceChange", BalanceChange.String())
	require.Equal(t, "GenerateAddress", GenerateAddress.String())
	require.Equal(t, "ReceivedTransaction", ReceivedTransaction.String())
	require.Equal(t, "Unknown", EventType(99).String())
}
