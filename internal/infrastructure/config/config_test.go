package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreMemory || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.WS.PingInterval != 30*time.Second || cfg.WS.SendBuffer != 32 {
		t.Fatalf("unexpected websocket defaults %+v", cfg.WS)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis should be disabled by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":             "9090",
		"STORE_DRIVER":     "mongo",
		"REDIS_ENABLED":    "true",
		"DISPATCH_WORKERS": "3",
		"WS_PING_INTERVAL": "5s",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.StoreDriver != StoreMongo || !cfg.Redis.Enabled || cfg.Dispatch.Workers != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.WS.PingInterval != 5*time.Second {
		t.Fatalf("expected 5s ping interval, got %s", cfg.WS.PingInterval)
	}
}

func TestLoadFrom_UnknownDriver(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"STORE_DRIVER": "postgres"}))
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoadFrom_SecretRequiredInProduction(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}

	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":        "production",
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
}
