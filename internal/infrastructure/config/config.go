package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	StoreDriver string `env:"STORE_DRIVER, default=memory"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Dispatch DispatchConfig
	WS       WSConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=careneighbour"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED, default=false"`
	Addr     string `env:"REDIS_ADDR,    default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,      default=0"`
	Channel  string `env:"REDIS_CHANNEL, default=careneighbour:notifications"`
}

type DispatchConfig struct {
	Workers int `env:"DISPATCH_WORKERS, default=8"`
}

type WSConfig struct {
	SendBuffer      int           `env:"WS_SEND_BUFFER,       default=32"`
	WriteTimeout    time.Duration `env:"WS_WRITE_TIMEOUT,     default=10s"`
	PingInterval    time.Duration `env:"WS_PING_INTERVAL,     default=30s"`
	MaxMessageBytes int64         `env:"WS_MAX_MESSAGE_BYTES, default=4096"`
}

// IsProduction reports whether the service runs outside development.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, StoreMemory, StoreMongo)
	}
	if c.JWTSecret == "" && !strings.EqualFold(c.Env, "development") {
		return fmt.Errorf("JWT_SECRET is required when ENV=%s", c.Env)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
