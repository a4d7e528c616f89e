package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Backend    BackendConfig
	Credential CredentialConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	CORSOrigins []string

	// TrustedProxies may set the client address through X-Forwarded-For.
	TrustedProxies []string
}

// BackendConfig points at the clinic REST API the portal forwards to.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CredentialConfig struct {
	Store  string // postgres | redis
	Secret string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	CookieSecure  bool
	CredentialTTL time.Duration
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

const (
	CredentialStorePostgres = "postgres"
	CredentialStoreRedis    = "redis"
)

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "siddhaka-portal")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("BACKEND_URL", "http://localhost:5000/api")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("CREDENTIAL_STORE", CredentialStorePostgres)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_IDLE_MINUTES", 60)
	viper.SetDefault("CREDENTIAL_TTL_HOURS", 24*30)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	// .env boleh tidak ada, environment variable tetap dipakai
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			CORSOrigins:    splitList(viper.GetString("CORS_ORIGINS")),
			TrustedProxies: splitList(viper.GetString("TRUSTED_PROXIES")),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(viper.GetString("BACKEND_URL"), "/"),
			Timeout: time.Duration(viper.GetInt("BACKEND_TIMEOUT_SECONDS")) * time.Second,
		},
		Credential: CredentialConfig{
			Store:  viper.GetString("CREDENTIAL_STORE"),
			Secret: viper.GetString("CREDENTIAL_SECRET"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			IdleTimeout:   time.Duration(viper.GetInt("SESSION_IDLE_MINUTES")) * time.Minute,
			CookieSecure:  viper.GetBool("COOKIE_SECURE"),
			CredentialTTL: time.Duration(viper.GetInt("CREDENTIAL_TTL_HOURS")) * time.Hour,
		},
		RateLimit: RateLimitConfig{
			PerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			Burst:     viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if config.Credential.Store != CredentialStorePostgres && config.Credential.Store != CredentialStoreRedis {
		return nil, errors.New("CREDENTIAL_STORE must be postgres or redis")
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
