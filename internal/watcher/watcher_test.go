package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/olehkaliuzhnyi/walletcore/internal/wallet"
)

// fakeWallet records reconciliation calls.
type fakeWallet struct {
	mu           sync.Mutex
	balanceCalls int
	historyCalls int
}

func (w *fakeWallet) Addresses() []wallet.Address { return nil }

func (w *fakeWallet) CheckBalancesOfAddresses(_ context.Context, _ []wallet.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balanceCalls++
	return nil
}

func (w *fakeWallet) GetTransactionHistory(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.historyCalls++
	return nil
}

func (w *fakeWallet) calls() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceCalls, w.historyCalls
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestWatcher_ReconcilesOnEveryTick(t *testing.T) {
	fw := &fakeWallet{}
	w := New(fw, Config{
		PollInterval:      10 * time.Millisecond,
		HistoryEvery:      2,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, testLogger())

	require.NoError(t, w.Start(context.Background()))

	require.Eventually(t, func() bool {
		balances, history := fw.calls()
		return balances >= 4 && history >= 1
	}, 2*time.Second, 10*time.Millisecond)

	w.Stop()

	balances, _ := fw.calls()
	time.Sleep(30 * time.Millisecond)
	after, _ := fw.calls()
	require.Equal(t, balances, after, "no reconciliation after Stop")
}

func TestWatcher_StopBeforeFirstTick(t *testing.T) {
	fw := &fakeWallet{}
	w := New(fw, Config{PollInterval: time.Hour}, testLogger())

	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	balances, history := fw.calls()
	require.Zero(t, balances)
	require.Zero(t, history)
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	fw := &fakeWallet{}
	w := New(fw, Config{}, testLogger())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop on a never-started watcher must return immediately")
	}

	balances, history := fw.calls()
	require.Zero(t, balances)
	require.Zero(t, history)
}

func TestWatcher_Defaults(t *testing.T) {
	w := New(&fakeWallet{}, Config{}, testLogger())
	require.Equal(t, 5*time.Second, w.cfg.PollInterval)
	require.Equal(t, 10, w.cfg.HistoryEvery)
}
