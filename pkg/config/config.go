package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env           string
	Port          int
	APIPrefix     string
	PublicBaseURL string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Documents DocumentsConfig
	Archive   ArchiveConfig
}

type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the Supabase project JWT secret.
type AuthConfig struct {
	JWTSecret string
	Audience  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DocumentsConfig drives PDF rendering.
type DocumentsConfig struct {
	AssetDir        string
	EmblemPath      string
	AssignmentLogo  string
	CertificateLogo string
	AssetTimeout    time.Duration
	IssuePlace      string
	CacheEnabled    bool
	CacheTTL        time.Duration
	SealSecret      string
	QREnabled       bool
}

// ArchiveConfig configures batch rendering into downloadable files.
type ArchiveConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
	MaxBatchSize      int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("SUPABASE_JWT_SECRET"),
		Audience:  v.GetString("SUPABASE_JWT_AUDIENCE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Documents = DocumentsConfig{
		AssetDir:        v.GetString("DOCUMENTS_ASSET_DIR"),
		EmblemPath:      v.GetString("DOCUMENTS_EMBLEM_PATH"),
		AssignmentLogo:  v.GetString("DOCUMENTS_LOGO_ASSIGNMENT"),
		CertificateLogo: v.GetString("DOCUMENTS_LOGO_CERTIFICATE"),
		AssetTimeout:    parseDuration(v.GetString("DOCUMENTS_ASSET_TIMEOUT"), 3*time.Second),
		IssuePlace:      v.GetString("DOCUMENTS_ISSUE_PLACE"),
		CacheEnabled:    v.GetBool("DOCUMENTS_CACHE_ENABLED"),
		CacheTTL:        parseDuration(v.GetString("DOCUMENTS_CACHE_TTL"), 12*time.Hour),
		SealSecret:      v.GetString("DOCUMENTS_SEAL_SECRET"),
		QREnabled:       v.GetBool("DOCUMENTS_QR_ENABLED"),
	}

	cfg.Archive = ArchiveConfig{
		Enabled:           v.GetBool("ENABLE_ARCHIVE_JOBS"),
		StorageDir:        v.GetString("ARCHIVE_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("ARCHIVE_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("ARCHIVE_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("ARCHIVE_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("ARCHIVE_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("ARCHIVE_WORKER_RETRIES"),
		MaxBatchSize:      v.GetInt("ARCHIVE_MAX_BATCH_SIZE"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SUPABASE_JWT_SECRET", "dev_supabase_secret")
	v.SetDefault("SUPABASE_JWT_AUDIENCE", "authenticated")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOCUMENTS_ASSET_DIR", "./public")
	v.SetDefault("DOCUMENTS_EMBLEM_PATH", "emblem.png")
	v.SetDefault("DOCUMENTS_LOGO_ASSIGNMENT", "mtefop-logo.png")
	v.SetDefault("DOCUMENTS_LOGO_CERTIFICATE", "mtfop-logo.png")
	v.SetDefault("DOCUMENTS_ASSET_TIMEOUT", "3s")
	v.SetDefault("DOCUMENTS_ISSUE_PLACE", "Antananarivo")
	v.SetDefault("DOCUMENTS_CACHE_ENABLED", true)
	v.SetDefault("DOCUMENTS_CACHE_TTL", "12h")
	v.SetDefault("DOCUMENTS_SEAL_SECRET", "dev_seal_secret")
	v.SetDefault("DOCUMENTS_QR_ENABLED", true)

	v.SetDefault("ENABLE_ARCHIVE_JOBS", true)
	v.SetDefault("ARCHIVE_STORAGE_DIR", "./archives")
	v.SetDefault("ARCHIVE_SIGNED_URL_SECRET", "dev_archive_secret")
	v.SetDefault("ARCHIVE_SIGNED_URL_TTL", "24h")
	v.SetDefault("ARCHIVE_CLEANUP_INTERVAL", "1h")
	v.SetDefault("ARCHIVE_WORKER_CONCURRENCY", 1)
	v.SetDefault("ARCHIVE_WORKER_RETRIES", 3)
	v.SetDefault("ARCHIVE_MAX_BATCH_SIZE", 100)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
