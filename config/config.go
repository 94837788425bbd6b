package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Upstream UpstreamConfig `json:"upstream"`
	Rates    RatesConfig    `json:"rates"`
	Cache    CacheConfig    `json:"cache"`
	Redis    RedisConfig    `json:"redis"`
	GeoIP    GeoIPConfig    `json:"geoip"`
	MongoDB  MongoDBConfig  `json:"mongodb"`
	Discord  DiscordConfig  `json:"discord"`
	Model    ModelConfig    `json:"model"`
	Log      LogConfig      `json:"log"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	Host           string   `json:"host"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// UpstreamConfig describes the exchange-rate API.
type UpstreamConfig struct {
	URL       string `json:"url"`
	Timeout   int    `json:"timeout_seconds"`
	UserAgent string `json:"user_agent"`
}

type RatesConfig struct {
	RefreshInterval int `json:"refresh_interval_minutes"`
	CacheTTL        int `json:"cache_ttl_hours"`
}

type CacheConfig struct {
	HealthCheckInterval int `json:"health_check_interval_seconds"`
}

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Enabled  bool   `json:"enabled"`
	UseTLS   bool   `json:"use_tls"`
}

type GeoIPConfig struct {
	DBPath      string `json:"db_path"`
	APIFallback bool   `json:"api_fallback"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Enabled  bool   `json:"enabled"`
}

type DiscordConfig struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
	Enabled   bool   `json:"enabled"`
}

// ModelConfig controls the X-Model-Version headers.
type ModelConfig struct {
	Version         string `json:"version"`
	MinSupported    string `json:"min_supported"`
	DeprecatedBelow string `json:"deprecated_below"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns the built-in configuration before any file, env or flag
// override is applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Upstream: UpstreamConfig{
			URL:       "https://api.exchangerate-api.com/v4/latest/USD",
			Timeout:   5,
			UserAgent: "ForgeAPI-ExchangeRates/1.0",
		},
		Rates: RatesConfig{
			RefreshInterval: 60,
			CacheTTL:        24,
		},
		Cache: CacheConfig{
			HealthCheckInterval: 30,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			DB:      0,
			Enabled: true,
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "forge",
			Enabled:  false,
		},
		Model: ModelConfig{
			Version:         "2.1.0",
			MinSupported:    "2.0.0",
			DeprecatedBelow: "1.0.0",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig layers defaults, the JSON config file, .env and the process
// environment, in that order. Command-line flags are applied by the caller.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.json"
	}

	if err := loadFile(cfg, configPath); err != nil {
		return nil, err
	}

	loadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream url is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("invalid upstream timeout %ds", c.Upstream.Timeout)
	}
	if c.Rates.RefreshInterval <= 0 {
		return fmt.Errorf("invalid rates refresh interval %dm", c.Rates.RefreshInterval)
	}
	if c.Rates.CacheTTL <= 0 {
		return fmt.Errorf("invalid rates cache ttl %dh", c.Rates.CacheTTL)
	}
	return nil
}

func loadEnv(cfg *Config) {
	// Server configuration
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = p
		}
	}
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Server.AllowedOrigins = parts
	}

	// Upstream exchange-rate API
	if val := os.Getenv("RATES_API_URL"); val != "" {
		cfg.Upstream.URL = val
	}
	if val := os.Getenv("RATES_API_TIMEOUT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Upstream.Timeout = p
		}
	}
	if val := os.Getenv("RATES_USER_AGENT"); val != "" {
		cfg.Upstream.UserAgent = val
	}
	if val := os.Getenv("RATES_REFRESH_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Rates.RefreshInterval = p
		}
	}
	if val := os.Getenv("RATES_CACHE_TTL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Rates.CacheTTL = p
		}
	}

	if val := os.Getenv("CACHE_HEALTH_CHECK_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Cache.HealthCheckInterval = p
		}
	}

	// Redis configuration
	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = p
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		cfg.Redis.Enabled = parseBool(val)
	}
	if val := os.Getenv("REDIS_USE_TLS"); val != "" {
		cfg.Redis.UseTLS = parseBool(val)
	}

	// GeoIP configuration
	if val := os.Getenv("GEOIP_DB_PATH"); val != "" {
		cfg.GeoIP.DBPath = val
	}
	if val := os.Getenv("GEOIP_API_FALLBACK"); val != "" {
		cfg.GeoIP.APIFallback = parseBool(val)
	}

	// MongoDB configuration
	if val := os.Getenv("MONGODB_URI"); val != "" {
		cfg.MongoDB.URI = val
	}
	if val := os.Getenv("MONGODB_DATABASE"); val != "" {
		cfg.MongoDB.Database = val
	}
	if val := os.Getenv("MONGODB_ENABLED"); val != "" {
		cfg.MongoDB.Enabled = parseBool(val)
	}

	// Discord alerts
	if val := os.Getenv("DISCORD_BOT_TOKEN"); val != "" {
		cfg.Discord.Token = val
		cfg.Discord.Enabled = true
	}
	if val := os.Getenv("DISCORD_CHANNEL_ID"); val != "" {
		cfg.Discord.ChannelID = val
	}
	if val := os.Getenv("DISCORD_ENABLED"); val != "" {
		cfg.Discord.Enabled = parseBool(val)
	}

	if val := os.Getenv("MODEL_VERSION"); val != "" {
		cfg.Model.Version = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
}

func parseBool(val string) bool {
	return val == "true" || val == "1"
}

// Helper methods for duration conversion
func (c *Config) UpstreamTimeoutDuration() time.Duration {
	return time.Duration(c.Upstream.Timeout) * time.Second
}

func (c *Config) RatesRefreshDuration() time.Duration {
	return time.Duration(c.Rates.RefreshInterval) * time.Minute
}

func (c *Config) RatesCacheTTLDuration() time.Duration {
	return time.Duration(c.Rates.CacheTTL) * time.Hour
}

func (c *Config) CacheHealthCheckDuration() time.Duration {
	return time.Duration(c.Cache.HealthCheckInterval) * time.Second
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
