package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LogMode string
	// Legacy relational schema reached through the ORM
	LegacyDBUrl string
	// New backend (Supabase)
	NewBackendDriver  string // "rest" or "postgres"
	DBUrl             string // Supabase Postgres connection string, used by the "postgres" driver
	SupabaseUrl       string
	SupabaseKey       string // service role key, bypasses row level security
	SupabaseAnonKey   string // paired with a user access token for session-scoped checks
	// Cutover flags
	MigratedFamilies   []string
	MigrationFlagsFile string
	// Batch tuning
	FanOutConcurrency int
	RestoreBatchSize  int
	// Backup artifacts
	BackupDir        string
	BackupS3Enabled  bool
	BackupS3Bucket   string
	BackupS3Region   string
	BackupS3Prefix   string
	BackupS3Provider string
	S3AccessKeyID    string
	S3SecretKey      string
	// Redis/Upstash, used for the restore run lock
	UpstashRedisURL      string
	UpstashRedisPassword string
	RestoreLockTTL       time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional; production injects the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		LogMode:            getEnv("LOG_MODE", "dev"),
		LegacyDBUrl:        getEnv("LEGACY_DATABASE_URL", ""),
		NewBackendDriver:   strings.ToLower(getEnv("NEW_BACKEND_DRIVER", "rest")),
		DBUrl:              getEnv("DATABASE_URL", ""),
		SupabaseUrl:        strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:        getEnv("SUPABASE_KEY", getEnv("SUPABASE_SERVICE_ROLE_KEY", "")),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		MigratedFamilies:   getEnvList("MIGRATED_FAMILIES"),
		MigrationFlagsFile: getEnv("MIGRATION_FLAGS_FILE", ""),
		FanOutConcurrency:  getEnvInt("FANOUT_CONCURRENCY", 8),
		RestoreBatchSize:   getEnvInt("RESTORE_BATCH_SIZE", 500),
		BackupDir:          getEnv("BACKUP_DIR", "backups"),
		BackupS3Enabled:    getEnvBool("BACKUP_S3_ENABLED", true),
		BackupS3Bucket:     getEnv("BACKUP_S3_BUCKET", ""),
		BackupS3Region:     getEnv("BACKUP_S3_REGION", getEnv("S3_REGION", "")),
		BackupS3Prefix:     strings.Trim(getEnv("BACKUP_S3_PREFIX", "backups"), "/"),
		BackupS3Provider:   getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:        getEnv("S3_SECRET_ACCESS_KEY", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		RestoreLockTTL:       time.Duration(getEnvInt("RESTORE_LOCK_TTL_SECONDS", 1800)) * time.Second,
	}

	if cfg.FanOutConcurrency < 1 {
		cfg.FanOutConcurrency = 1
	}
	if cfg.RestoreBatchSize < 1 {
		cfg.RestoreBatchSize = 500
	}

	if cfg.LegacyDBUrl == "" {
		log.Println("WARNING: LEGACY_DATABASE_URL is missing. Unmigrated families cannot be served.")
	}
	switch cfg.NewBackendDriver {
	case "rest":
		if cfg.SupabaseUrl == "" || cfg.SupabaseKey == "" {
			log.Println("WARNING: SUPABASE_URL or SUPABASE_KEY is missing. Migrated families cannot be served.")
		}
	case "postgres":
		if cfg.DBUrl == "" {
			log.Println("WARNING: DATABASE_URL is missing. Migrated families cannot be served.")
		}
	default:
		log.Printf("WARNING: unknown NEW_BACKEND_DRIVER %q, falling back to rest", cfg.NewBackendDriver)
		cfg.NewBackendDriver = "rest"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool accepts anything strconv.ParseBool does
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
