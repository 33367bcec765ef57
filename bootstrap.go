package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// infrastructure holds the connections every command needs
type infrastructure struct {
	cfg       *config.Config
	db        *gorm.DB
	redis     *redis.Client
	kv        services.KeyValueStore
	tokens    services.TokenService
	accessLog io.Writer
	closers   []func()
}

// bootstrap loads configuration, configures logging and error reporting,
// and opens the database, cache and token service
func bootstrap() (*infrastructure, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	infra := &infrastructure{cfg: cfg}
	infra.accessLog = services.ConfigureLogging(cfg.Logging)

	flush, err := services.InitErrorReporting(cfg.Sentry, cfg.Deployment)
	if err != nil {
		logrus.WithError(err).Warn("sentry initialisation failed, errors will only be logged")
	} else {
		infra.closers = append(infra.closers, flush)
	}

	infra.db, err = initializeDatabase(cfg.Database)
	if err != nil {
		infra.Close()
		return nil, err
	}

	infra.redis, err = initializeCache(cfg.Cache)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.kv = services.NewKeyValueStore(infra.redis, cfg.Cache.RedisPrefix)

	infra.tokens, err = services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
		infra.kv,
	)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"issuer":   cfg.JWT.Issuer,
		"audience": cfg.JWT.Audience,
	}).Info("token service initialized")

	return infra, nil
}

// Close releases resources in reverse order of acquisition
func (i *infrastructure) Close() {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close redis client")
		}
	}
	if i.db != nil {
		if sqlDB, err := i.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		i.closers[idx]()
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"max_open": cfg.MaxOpenConns,
		"max_idle": cfg.MaxIdleConns,
	}).Info("database connection established")

	return db, nil
}

// initializeCache returns nil when the cache is disabled, in which case an in-memory store is used
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.RedisURL == "" {
		logrus.Info("redis disabled, using in-memory key/value store")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logrus.WithField("db", cfg.RedisDB).Info("redis connection established")
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis. The returned func stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	if client == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	monitorCtx, cancel := context.WithCancel(parent)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logrus.WithError(err).Warn("redis healthcheck failed")
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeStorage picks the object store for videos and thumbnails
func initializeStorage(ctx context.Context, cfg config.StorageConfig) (services.ObjectStorage, error) {
	switch cfg.Driver {
	case "memory":
		logrus.Warn("using in-memory object storage, uploads are lost on restart")
		return services.NewMemoryStorage(cfg.PublicBaseURL, true), nil
	default:
		storage, err := services.NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		return storage, nil
	}
}
