package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"max.ks1230/expenses-app/internal/config"
	"max.ks1230/expenses-app/internal/logger"
	"max.ks1230/expenses-app/internal/model/storage"
	"max.ks1230/expenses-app/internal/service/records"
)

const shutdownTimeout = 5 * time.Second

func main() {
	logger.Info("Record service init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	var srv *records.Server
	switch conf.Server().Storage() {
	case "postgres":
		db, err := storage.NewPostgresStorage(conf.Postgres())
		if err != nil {
			logger.Fatal("failed to init postgres", zap.Error(err))
		}
		srv = records.NewServer(conf.Server().Addr(), db)
	default:
		srv = records.NewServer(conf.Server().Addr(), storage.NewInMemStorage())
	}

	logger.Info("Record service init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("record service failed", zap.Error(err))
	}
}
