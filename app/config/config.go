package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	AppEnv   string
	HTTPAddr string

	DBDriver    string
	DatabaseDSN string

	StorageDisk string
	MediaRoot   string
	MediaURL    string
	S3Bucket    string
	S3Region    string
	S3Key       string
	S3Secret    string
	S3Endpoint  string
	S3URL       string

	RedisAddr     string
	RedisPassword string

	DeriveAsync   bool
	DeriveWorkers int
	DeriveTimeout time.Duration
}

const (
	defaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=shop port=5432 sslmode=disable"
	defaultMySQLDSN    = "root:root@tcp(127.0.0.1:3306)/shop?charset=utf8mb4&parseTime=True&loc=Local"
	defaultSQLiteDSN   = "shop.db"
)

// Load reads envFile (a missing file is not an error) and then the process
// environment. Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		AppEnv:        get("APP_ENV", "local"),
		HTTPAddr:      get("HTTP_ADDR", ":8080"),
		DBDriver:      strings.ToLower(get("DB_DRIVER", "postgres")),
		DatabaseDSN:   get("DATABASE_DSN", ""),
		StorageDisk:   strings.ToLower(get("STORAGE_DISK", "local")),
		MediaRoot:     get("MEDIA_ROOT", "media"),
		MediaURL:      get("MEDIA_URL", "/media"),
		S3Bucket:      get("S3_BUCKET", ""),
		S3Region:      get("S3_REGION", "us-east-1"),
		S3Key:         get("S3_KEY", ""),
		S3Secret:      get("S3_SECRET", ""),
		S3Endpoint:    get("S3_ENDPOINT", ""),
		S3URL:         get("S3_URL", ""),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
	}

	var err error
	if cfg.DeriveAsync, err = strconv.ParseBool(get("IMAGE_DERIVE_ASYNC", "false")); err != nil {
		return Config{}, fmt.Errorf("config: IMAGE_DERIVE_ASYNC: %w", err)
	}
	if cfg.DeriveWorkers, err = strconv.Atoi(get("IMAGE_DERIVE_WORKERS", "4")); err != nil {
		return Config{}, fmt.Errorf("config: IMAGE_DERIVE_WORKERS: %w", err)
	}
	if cfg.DeriveWorkers < 1 {
		return Config{}, fmt.Errorf("config: IMAGE_DERIVE_WORKERS must be positive, got %d", cfg.DeriveWorkers)
	}
	if cfg.DeriveTimeout, err = time.ParseDuration(get("IMAGE_DERIVE_TIMEOUT", "60s")); err != nil {
		return Config{}, fmt.Errorf("config: IMAGE_DERIVE_TIMEOUT: %w", err)
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = defaultPostgresDSN
		}
	case "mysql":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = defaultMySQLDSN
		}
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = defaultSQLiteDSN
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q (supported: postgres, mysql, sqlite)", cfg.DBDriver)
	}

	switch cfg.StorageDisk {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			return Config{}, errors.New("config: STORAGE_DISK=s3 requires S3_BUCKET")
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported STORAGE_DISK %q (supported: local, s3)", cfg.StorageDisk)
	}

	return cfg, nil
}

// Production reports whether the service runs in a production environment.
func (c Config) Production() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}
