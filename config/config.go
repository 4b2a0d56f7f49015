// Package config loads service settings from the environment.
package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Redis   RedisConfig
	Ledger  LedgerConfig
}

type ServerConfig struct {
	AppEnv      string
	HTTPPort    string
	CORSOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// StorageConfig selects the durable slot holding the snapshot.
type StorageConfig struct {
	Backend string // sqlite | file | redis | memory
	Path    string
	Key     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LedgerConfig struct {
	AllowNegative      bool
	ReconcileOnStartup bool
	RepairOnStartup    bool
	ReconcileInterval  time.Duration
	// ReconcileRepair makes the periodic scheduler repair drift, not only report it.
	ReconcileRepair    bool
}

// DefaultCORSOrigins are allowed when CORS_ORIGINS is unset or empty.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:      getEnv("APP_ENV", "development"),
			HTTPPort:    getEnv("HTTP_PORT", "8080"),
			CORSOrigins: getEnvSlice("CORS_ORIGINS", slices.Clone(DefaultCORSOrigins)),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", ""),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendSQLite),
			Path:    getEnv("STORAGE_PATH", "stockledger.db"),
			Key:     getEnv("STORAGE_KEY", "inventory_master_db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			AllowNegative:      getEnvBool("LEDGER_ALLOW_NEGATIVE", true),
			ReconcileOnStartup: getEnvBool("LEDGER_RECONCILE_ON_STARTUP", true),
			RepairOnStartup:    getEnvBool("LEDGER_REPAIR_ON_STARTUP", false),
			ReconcileInterval:  getEnvDuration("RECONCILE_INTERVAL", time.Hour),
			ReconcileRepair:    getEnvBool("RECONCILE_REPAIR", false),
		},
	}
}

// IsDevelopment reports whether APP_ENV selects development defaults.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.AppEnv)
	return env == "dev" || env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
