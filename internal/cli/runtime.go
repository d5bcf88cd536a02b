package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-recruitment-datalayer/config"
	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/backup"
	"go-recruitment-datalayer/internal/featureflag"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/database"
	"go-recruitment-datalayer/pkg/logger"
	"go-recruitment-datalayer/pkg/redis"
	"go-recruitment-datalayer/pkg/storage"
)

// Runtime is everything a command needs, built once per invocation.
type Runtime struct {
	Log       *logger.Logger
	Set       *adapter.Set
	Next      baas.Client
	Store     backup.Store
	Mirror    *backup.S3Mirror
	Locker    redis.LockStore
	LockTTL   time.Duration
	FanOut    int
	BatchSize int
	// Session returns a set whose new-backend calls run as the holder of
	// accessToken. Nil when the new backend driver cannot impersonate.
	Session func(accessToken string) (*adapter.Set, error)
	Close   func()
}

// Factory builds the Runtime lazily so --help never dials anything.
type Factory func(ctx context.Context) (*Runtime, error)

// Bootstrap wires the production Runtime from cfg.
func Bootstrap(cfg *config.Config, log *logger.Logger) Factory {
	return func(ctx context.Context) (*Runtime, error) {
		var closers []func()
		closeAll := func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}

		flags, err := featureflag.Load(cfg.MigratedFamilies, cfg.MigrationFlagsFile)
		if err != nil {
			return nil, err
		}
		log.Info("feature flags loaded", "migrated", flags.Migrated())

		deps := adapter.Deps{Flags: flags, Log: log, FanOut: cfg.FanOutConcurrency}

		if cfg.LegacyDBUrl != "" {
			db, err := database.NewLegacyConnection(cfg.LegacyDBUrl)
			if err != nil {
				return nil, err
			}
			if sqlDB, err := db.DB(); err == nil {
				closers = append(closers, func() { _ = sqlDB.Close() })
			}
			deps.Legacy = db
		}

		var rest *baas.RESTClient
		switch cfg.NewBackendDriver {
		case "postgres":
			if cfg.DBUrl != "" {
				pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
				if err != nil {
					closeAll()
					return nil, fmt.Errorf("connect new backend: %w", err)
				}
				closers = append(closers, pool.Close)
				deps.Next = baas.NewPgxClient(pool)
			}
		default:
			if cfg.SupabaseUrl != "" && cfg.SupabaseKey != "" {
				rest = baas.NewRESTClient(cfg.SupabaseUrl, cfg.SupabaseKey, &http.Client{Timeout: 30 * time.Second})
				deps.Next = rest
			}
		}

		rt := &Runtime{
			Log:       log,
			Set:       adapter.NewSet(deps),
			Next:      deps.Next,
			Store:     backup.DirStore{Root: cfg.BackupDir},
			LockTTL:   cfg.RestoreLockTTL,
			FanOut:    cfg.FanOutConcurrency,
			BatchSize: cfg.RestoreBatchSize,
		}
		if rest != nil {
			rt.Session = func(accessToken string) (*adapter.Set, error) {
				if cfg.SupabaseAnonKey == "" {
					return nil, errors.New("SUPABASE_ANON_KEY is required for session-scoped checks")
				}
				scoped := deps
				scoped.Next = rest.WithSession(cfg.SupabaseAnonKey, accessToken)
				return adapter.NewSet(scoped), nil
			}
		}

		if cfg.BackupS3Enabled && cfg.BackupS3Bucket != "" {
			bucket := storage.NewBucketConfig(cfg.BackupS3Provider, cfg.BackupS3Region, cfg.BackupS3Bucket, cfg.S3AccessKeyID, cfg.S3SecretKey)
			client, err := storage.Connect(ctx, bucket)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("backup mirror: %w", err)
			}
			rt.Mirror = &backup.S3Mirror{Client: client, Bucket: cfg.BackupS3Bucket, Prefix: cfg.BackupS3Prefix, Log: log}
		}

		if cfg.UpstashRedisURL != "" {
			client, err := redis.Connect(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
			if err != nil {
				log.Warn("restore lock unavailable", "error", err)
			} else {
				closers = append(closers, func() { _ = client.Close() })
				rt.Locker = client
			}
		}

		rt.Close = closeAll
		return rt, nil
	}
}
