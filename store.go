package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stackcalc/config"
	"stackcalc/core/persistence"
	"stackcalc/logger"
)

// openStore - хранилище состояния по настройкам; close освобождает соединения
func openStore(cmd *cobra.Command, cfg *config.Config) (persistence.Store, func(), error) {
	kind := cfg.Store
	if flag, _ := cmd.Flags().GetString("store"); flag != "" {
		kind = flag
	}

	switch kind {
	case config.StoreFile:
		logger.Info("using file store", "path", cfg.DataFile)
		return persistence.NewFileStoreWithFile(cfg.DataFile), func() {}, nil

	case config.StoreSQLite:
		store, err := persistence.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		return store, func() { _ = store.Close() }, nil

	case config.StoreRedis:
		store := persistence.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store, func() { _ = store.Close() }, nil

	case config.StoreMemory:
		logger.Info("using in-memory store, state is lost on exit")
		return persistence.NewMemoryStore(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store %q", kind)
}
