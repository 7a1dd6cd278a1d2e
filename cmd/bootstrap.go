package cmd

import (
	"fmt"
	"log/slog"

	config "task-marketplace.com/task-marketplace/internal/configs"
	"task-marketplace.com/task-marketplace/internal/lock"
	"task-marketplace.com/task-marketplace/internal/logger"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

// runtime holds the infrastructure shared by every command.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	store   repository.Store
	locker  lock.Locker
	closers []func()
}

func bootstrap() (*runtime, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: log}

	if err := rt.openStore(); err != nil {
		rt.close()
		return nil, err
	}
	if err := rt.openLocker(); err != nil {
		rt.close()
		return nil, err
	}

	return rt, nil
}

func (rt *runtime) openStore() error {
	if rt.cfg.StorageDriver == "memory" {
		rt.logger.Warn("using in-memory storage, data is lost on exit")
		rt.store = repository.NewMemoryStore()
		return nil
	}

	db, err := config.NewDatabaseClient(rt.cfg.StorageDriver, rt.cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, func() { _ = sqlDB.Close() })

	rt.store = repository.NewGormStore(db)
	rt.logger.Info("database ready", "driver", rt.cfg.StorageDriver)
	return nil
}

func (rt *runtime) openLocker() error {
	if rt.cfg.LockBackend != "redis" {
		rt.locker = lock.NewLocalLocker(rt.cfg.LockWait)
		return nil
	}

	client, err := config.NewRedisClient(rt.cfg.RedisAddr)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, client.Close)

	rt.locker = lock.NewRedisLocker(client, rt.cfg.RedisLockPrefix, rt.cfg.LockTTL, rt.cfg.LockWait, rt.logger)
	rt.logger.Info("using redis task locks", "addr", rt.cfg.RedisAddr)
	return nil
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}
