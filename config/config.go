package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/foosball-tournament/db"
	"github.com/Dosada05/foosball-tournament/storage"
	"github.com/joho/godotenv"
)

// Драйверы хранилища состояния
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort         int
	StorageDriver      string
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	RedisURL           string
	RedisKeyPrefix     string
	JWTSecretKey       string
	RecentMatchesLimit int
	CORSAllowedOrigins []string
	LogLevel           slog.Level

	// Пароль организатора: открытый текст или bcrypt-хеш
	OrganizerPassword     string
	OrganizerPasswordHash string

	// Экспорт архива в Cloudflare R2 (или любое S3-совместимое хранилище)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
	R2Endpoint        string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	port, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	recentLimit, err := getInt("RECENT_MATCHES_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	pool := db.DefaultPoolOptions()
	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", pool.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", pool.MaxIdleConns)
	if err != nil {
		return nil, err
	}
	lifetime, err := getDuration("DB_CONN_MAX_LIFETIME", pool.ConnMaxLifetime)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	cfg := &Config{
		ServerPort:            port,
		StorageDriver:         strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:        maxOpen,
		DBMaxIdleConns:        maxIdle,
		DBConnMaxLifetime:     lifetime,
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix:        getEnv("REDIS_KEY_PREFIX", "foosball:"),
		JWTSecretKey:          os.Getenv("JWT_SECRET_KEY"),
		RecentMatchesLimit:    recentLimit,
		CORSAllowedOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:              level,
		OrganizerPassword:     os.Getenv("ORGANIZER_PASSWORD"),
		OrganizerPasswordHash: os.Getenv("ORGANIZER_PASSWORD_HASH"),
		R2AccountID:           os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:         os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:     os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:          os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:       os.Getenv("R2_PUBLIC_BASE_URL"),
		R2Endpoint:            os.Getenv("R2_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if c.OrganizerPassword == "" && c.OrganizerPasswordHash == "" {
		return fmt.Errorf("ORGANIZER_PASSWORD or ORGANIZER_PASSWORD_HASH environment variable must be set")
	}
	if c.RecentMatchesLimit <= 0 {
		return fmt.Errorf("RECENT_MATCHES_LIMIT must be positive, got %d", c.RecentMatchesLimit)
	}

	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the %s storage driver", StoragePostgres)
		}
		if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 {
			return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive and DB_MAX_IDLE_CONNS not negative")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL environment variable is required for the %s storage driver", StorageRedis)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q, expected memory, postgres or redis", c.StorageDriver)
	}

	if c.ArchiveExportEnabled() {
		if err := c.UploaderConfig().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveExportEnabled reports whether any R2 credential is configured. A
// partial configuration is rejected by Validate.
func (c *Config) ArchiveExportEnabled() bool {
	return c.R2AccessKeyID != "" || c.R2SecretAccessKey != "" || c.R2BucketName != ""
}

func (c *Config) UploaderConfig() storage.S3UploaderConfig {
	return storage.S3UploaderConfig{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
		Endpoint:        c.R2Endpoint,
	}
}

// PoolOptions returns the postgres pool settings.
func (c *Config) PoolOptions() db.PoolOptions {
	opts := db.DefaultPoolOptions()
	opts.MaxOpenConns = c.DBMaxOpenConns
	opts.MaxIdleConns = c.DBMaxIdleConns
	opts.ConnMaxLifetime = c.DBConnMaxLifetime
	return opts
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
