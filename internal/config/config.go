package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Dispatch DispatchConfig `json:"dispatch"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

// DispatchConfig tunes the assignment protocol. OfferTTL is the per-offer
// response deadline; silence past it counts as a timeout regardless of
// transport acknowledgment.
type DispatchConfig struct {
	OfferTTL       time.Duration `json:"offer_ttl"`
	Candidates     int           `json:"candidates"`
	SearchRadiusKM float64       `json:"search_radius_km"`
	MaxRadiusKM    float64       `json:"max_radius_km"`
	MaxRounds      int           `json:"max_rounds"`
	PositionMaxAge time.Duration `json:"position_max_age"`

	// InMemoryIndex switches candidate ranking from the PostGIS query to the
	// process-local index. Single-instance deployments only.
	InMemoryIndex bool `json:"in_memory_index"`
}

func Load() (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			// Must stay above the offer long-poll window.
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "lifeline_db"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Dispatch: DispatchConfig{
			OfferTTL:       getEnvDuration("DISPATCH_OFFER_TTL", 25*time.Second),
			Candidates:     getEnvInt("DISPATCH_CANDIDATES", 5),
			SearchRadiusKM: getEnvFloat("DISPATCH_SEARCH_RADIUS_KM", 5),
			MaxRadiusKM:    getEnvFloat("DISPATCH_MAX_RADIUS_KM", 20),
			MaxRounds:      getEnvInt("DISPATCH_MAX_ROUNDS", 2),
			PositionMaxAge: getEnvDuration("DISPATCH_POSITION_MAX_AGE", 2*time.Minute),
			InMemoryIndex:  getEnvBool("DISPATCH_IN_MEMORY_INDEX", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("postgres_db", cfg.Postgres.Database),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.Duration("offer_ttl", cfg.Dispatch.OfferTTL))

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}
	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}
	if c.Dispatch.OfferTTL <= 0 {
		return errors.New("DISPATCH_OFFER_TTL must be positive")
	}
	if c.Dispatch.Candidates < 1 {
		return errors.New("DISPATCH_CANDIDATES must be at least 1")
	}
	if c.Dispatch.MaxRadiusKM < c.Dispatch.SearchRadiusKM {
		return errors.New("DISPATCH_MAX_RADIUS_KM must be >= DISPATCH_SEARCH_RADIUS_KM")
	}
	if c.Dispatch.MaxRounds < 1 {
		return errors.New("DISPATCH_MAX_ROUNDS must be at least 1")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
