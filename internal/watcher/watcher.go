// Package watcher periodically reconciles a wallet against external
// truth: balances on every tick, transaction history on a coarser
// cadence. Change detection and event emission stay inside the wallet;
// the watcher only drives the cadence.
package watcher

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/olehkaliuzhnyi/walletcore/internal/wallet"
)

// Wallet is the reconciliation surface the watcher drives.
type Wallet interface {
	Addresses() []wallet.Address
	CheckBalancesOfAddresses(ctx context.Context, addresses []wallet.Address) error
	GetTransactionHistory(ctx context.Context) error
}

// Config holds the watcher cadence parameters.
type Config struct {
	// PollInterval is the time between balance reconciliations.
	PollInterval time.Duration
	// HistoryEvery reconciles transaction history once per that many
	// balance ticks.
	HistoryEvery int
	// RequestsPerSecond and Burst bound the request rate towards the node.
	RequestsPerSecond float64
	Burst             int
}

// Watcher runs the reconciliation loop.
type Watcher struct {
	wallet  Wallet
	cfg     Config
	limiter *rate.Limiter
	logger  logrus.FieldLogger
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a watcher for the given wallet.
func New(w Wallet, cfg Config, logger logrus.FieldLogger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.HistoryEvery <= 0 {
		cfg.HistoryEvery = 10
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Watcher{
		wallet:  w,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.WithField("component", "watcher"),
		done:    make(chan struct{}),
	}
}

// Start begins the reconciliation loop.
func (w *Watcher) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.WithField("poll_interval", w.cfg.PollInterval).Info("starting watcher")
	go w.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for it to exit. Calling Stop on a
// watcher that was never started is a no-op.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.logger.Info("watcher stopped")
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			if err := w.reconcile(ctx, tick%w.cfg.HistoryEvery == 0); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.WithError(err).Error("reconciliation failed")
			}
		}
	}
}

func (w *Watcher) reconcile(ctx context.Context, withHistory bool) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := w.wallet.CheckBalancesOfAddresses(ctx, w.wallet.Addresses()); err != nil {
		return err
	}

	if !withHistory {
		return nil
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	return w.wallet.GetTransactionHistory(ctx)
}
