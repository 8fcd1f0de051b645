package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/olehkaliuzhnyi/walletcore/internal/config"
	"github.com/olehkaliuzhnyi/walletcore/internal/node"
	"github.com/olehkaliuzhnyi/walletcore/internal/wallet"
	"github.com/olehkaliuzhnyi/walletcore/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	logger := log.New()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	client := node.NewHTTPClient(cfg.NodeEndpoint, cfg.RequestTimeout, logger)

	w, err := newWallet(cfg, client, logger)
	if err != nil {
		logger.WithError(err).Fatal("wallet construction failed")
	}
	defer w.Close()

	logger.WithFields(log.Fields{
		"network":    w.Network(),
		"publicHash": w.PublicHash(),
	}).Info("wallet initialized")

	ctx := context.Background()
	if _, err := w.AutoDiscoverAddresses(ctx); err != nil {
		logger.WithError(err).Warn("initial address discovery failed")
	}

	id, events := w.Subscribe()
	defer w.Unsubscribe(id)
	go logEvents(logger, events)

	watch := watcher.New(w, watcher.Config{
		PollInterval:      cfg.PollInterval,
		HistoryEvery:      cfg.HistoryEvery,
		RequestsPerSecond: cfg.RateLimit,
		Burst:             cfg.RateBurst,
	}, logger)
	if err := watch.Start(ctx); err != nil {
		logger.WithError(err).Fatal("watcher start failed")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	watch.Stop()
}

func newWallet(cfg config.Config, client wallet.NodeClient, logger log.FieldLogger) (*wallet.Wallet, error) {
	if cfg.Mnemonic != "" {
		return wallet.FromMnemonic(cfg.Mnemonic, cfg.Network, client, logger)
	}
	return wallet.New(wallet.Opts{Network: cfg.Network, Seed: cfg.Seed}, client, logger)
}

func logEvents(logger log.FieldLogger, events <-chan wallet.Event) {
	for ev := range events {
		switch e := ev.(type) {
		case wallet.BalanceChangeEvent:
			logger.WithFields(log.Fields{
				"addressHex": e.AddressHex,
				"balance":    e.Balance.String(),
				"preBalance": e.PreBalance.String(),
			}).Info("balance change")
		case wallet.GenerateAddressEvent:
			logger.WithField("addressHex", e.AddressHex).Info("address generated")
		case wallet.ReceivedTransactionEvent:
			logger.WithFields(log.Fields{
				"hash":   e.Transaction.Hash,
				"amount": e.Transaction.Amount.String(),
			}).Info("transaction received")
		}
	}
}
