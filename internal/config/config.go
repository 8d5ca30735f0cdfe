package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DBPostgres = "postgres"
	DBMySQL    = "mysql"
	DBSQLite   = "sqlite3"
	DBMemory   = "memory"

	// postgres drivers
	DriverPgx = "pgx"
	DriverPq  = "pq"
)

const maxCacheTTL = 365 * 24 * time.Hour

type Config struct {
	Env      string
	Port     int
	LogLevel string

	DB    DBConfig
	Redis RedisConfig

	// TTL of the cached "all users" entry; zero means the cache default.
	UsersCacheTTL time.Duration
	MaxBodyBytes  int64

	// empty disables CORS headers
	CORSAllowedOrigins []string
	// requests per minute per client IP; zero disables limiting
	RateLimitPerMinute int

	OTelServiceName string
	OTelEndpoint    string
	OTelInsecure    bool
	// fraction of root spans sampled, 0..1
	OTelSampleRatio float64
}

type DBConfig struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// Driver picks the postgres client: pgx (pool) or pq (database/sql).
	Driver string
	// run schema migrations at startup
	Sync bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// UsesPgx reports whether the store should run on a pgx pool rather than database/sql.
func (d DBConfig) UsesPgx() bool {
	return d.Type == DBPostgres && d.Driver != DriverPq
}

// Enabled reports whether a redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Load reads a .env file if one exists, then the environment. It fails on
// malformed or missing required values instead of deferring to request time.
func Load() (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return FromEnv()
}

func FromEnv() (Config, error) {
	var errs []error

	intVar := func(key string, fallback int) int {
		n, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := Config{
		Env:      getEnv("APP_ENV", "dev"),
		Port:     intVar("PORT", 3000),
		LogLevel: getEnv("LOG_LEVEL", ""),
		DB: DBConfig{
			Type:     strings.ToLower(getEnv("DB_TYPE", DBPostgres)),
			Host:     getEnv("DB_HOST", ""),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASS", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPgx)),
			Sync:     getEnvBool("DB_SYNC", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     intVar("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       intVar("REDIS_DB", 0),
		},
		UsersCacheTTL:      parseTTL(os.Getenv("USERS_CACHE_TTL")),
		MaxBodyBytes:       int64(intVar("MAX_BODY_BYTES", 1<<20)),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMinute: intVar("RATE_LIMIT_PER_MINUTE", 0),
		OTelServiceName:    getEnv("OTEL_SERVICE_NAME", "user-api"),
		OTelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure:       getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	ratio, err := getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.OTelSampleRatio = ratio

	cfg.DB.Port = intVar("DB_PORT", defaultDBPort(cfg.DB.Type))

	errs = append(errs, cfg.validate()...)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	switch c.DB.Type {
	case DBPostgres, DBMySQL:
		if c.DB.Type == DBPostgres && c.DB.Driver != DriverPgx && c.DB.Driver != DriverPq {
			errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q (want pgx or pq)", c.DB.Driver))
		}
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
	case DBSQLite:
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME (sqlite file path) is required"))
		}
	case DBMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_TYPE %q", c.DB.Type))
	}

	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}

	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG out of range: %g", c.OTelSampleRatio))
	}

	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	return errs
}

// parseTTL reads milliseconds. Unset, unparsable or non-positive values yield zero
// so the cache default applies; values above maxCacheTTL are clamped to it.
func parseTTL(raw string) time.Duration {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return 0
	}

	if ms > maxCacheTTL.Milliseconds() {
		return maxCacheTTL
	}

	return time.Duration(ms) * time.Millisecond
}

func defaultDBPort(dbType string) int {
	switch dbType {
	case DBMySQL:
		return 3306
	case DBPostgres:
		return 5432
	default:
		return 0
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	num, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}

	return num, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}

	return f, nil
}

// getEnvBool falls back on unset or unparsable values.
func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return b
}
