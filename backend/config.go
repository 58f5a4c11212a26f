package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	// loads .env into the environment before LoadConfigFromEnv runs
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Addr        string        `json:"addr"`
	StoreDriver string        `json:"store_driver"`
	Redis       RedisConfig   `json:"redis"`
	PostgresDSN string        `json:"-"`
	SeedPath    string        `json:"seed_path"`
	RevertDelay time.Duration `json:"revert_delay"`
	WSPing      time.Duration `json:"ws_ping"`
	Logs        LogConfig     `json:"logs"`
}

type RedisConfig struct {
	Addr       string        `json:"addr"`
	Password   string        `json:"-"`
	DB         int           `json:"db"`
	SessionTTL time.Duration `json:"session_ttl"`
}

type LogConfig struct {
	Style string `json:"style"`
	Level string `json:"level"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		StoreDriver: "memory",
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: 24 * time.Hour,
		},
		// pacing only: clients keep the rejected attempt on screen this long
		RevertDelay: time.Second,
		WSPing:      30 * time.Second,
		Logs: LogConfig{
			Style: "json",
			Level: "info",
		},
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

// LoadConfigFromEnv overlays environment values on DefaultConfig. Values
// that fail to parse keep their default and are reported in the error list.
func LoadConfigFromEnv(getenv func(string) string) (Config, []error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()
	var errs []error

	if v := getenv("CHESS_ADDR"); v != "" {
		cfg.Addr = v
	} else if v := getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = getenv("REDIS_PASSWORD")
	cfg.Redis.DB = envInt(getenv, "REDIS_DB", cfg.Redis.DB, &errs)
	cfg.Redis.SessionTTL = time.Duration(envInt(getenv, "SESSION_TTL_HOURS", int(cfg.Redis.SessionTTL/time.Hour), &errs)) * time.Hour
	cfg.PostgresDSN = getenv("POSTGRES_DSN")
	cfg.SeedPath = getenv("BOARD_SEED_PATH")
	cfg.RevertDelay = time.Duration(envInt(getenv, "REVERT_DELAY_MS", int(cfg.RevertDelay/time.Millisecond), &errs)) * time.Millisecond
	cfg.WSPing = time.Duration(envInt(getenv, "WS_PING_SECONDS", int(cfg.WSPing/time.Second), &errs)) * time.Second
	if v := getenv("LOG_STYLE"); v != "" {
		cfg.Logs.Style = strings.ToLower(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logs.Level = strings.ToLower(v)
	}
	return cfg, errs
}

func envInt(getenv func(string) string, key string, fallback int, errs *[]error) int {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		*errs = append(*errs, fmt.Errorf("%s=%q: expected a non-negative integer", key, raw))
		return fallback
	}
	return value
}
