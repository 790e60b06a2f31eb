package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"max.ks1230/expenses-app/internal/clients/cache"
	"max.ks1230/expenses-app/internal/clients/console"
	"max.ks1230/expenses-app/internal/clients/records"
	"max.ks1230/expenses-app/internal/config"
	"max.ks1230/expenses-app/internal/logger"
	"max.ks1230/expenses-app/internal/model/commands"
	"max.ks1230/expenses-app/internal/model/ledger"
	"max.ks1230/expenses-app/internal/model/session"
	"max.ks1230/expenses-app/internal/model/snapshot"
)

func main() {
	logger.Info("App init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	mc, err := cache.NewMemcache(conf.Cache())
	if err != nil {
		logger.Fatal("failed to init cache", zap.Error(err))
	}

	api := records.New(conf.Api())

	sessionStore := session.NewStore(api)
	ledgerStore := ledger.NewStore(api)

	restore(mc, conf.Cache().SessionSnapshotKey(), sessionStore.Restore)
	restore(mc, conf.Cache().LedgerSnapshotKey(), ledgerStore.Restore)

	sessionWriter := snapshot.NewWriter(mc, conf.Cache().SessionSnapshotKey(), sessionStore.Snapshot)
	defer sessionWriter.Close()
	ledgerWriter := snapshot.NewWriter(mc, conf.Cache().LedgerSnapshotKey(), ledgerStore.Snapshot)
	defer ledgerWriter.Close()

	sessionStore.SetPersister(sessionWriter)
	ledgerStore.SetPersister(ledgerWriter)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if sessionStore.IsAuthenticated() {
		go func() {
			if err := ledgerStore.FetchAll(ctx); err != nil {
				logger.Warn("initial fetch failed", zap.Error(err))
			}
		}()
	}

	cmdService := commands.NewService(sessionStore, ledgerStore, conf.App())

	logger.Info("App init - end")

	console.New().ListenInput(ctx, cmdService)
}

func restore(mc *cache.MemcacheClient, key string, apply func([]byte) error) {
	snap, err := mc.LoadSnapshot(key)
	if err != nil {
		logger.Warn("cannot load snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err = apply(snap); err != nil {
		logger.Warn("cannot restore snapshot", zap.String("key", key), zap.Error(err))
	}
}
