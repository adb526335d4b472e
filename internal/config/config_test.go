package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("STORE_DATA_FILE", "/tmp/staffdesk-test.json")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Store.DataFile != "/tmp/staffdesk-test.json" {
		t.Fatalf("unexpected data file: %q", cfg.Store.DataFile)
	}
	if cfg.Redis.Host == "" || cfg.JWT.Secret == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Store.PersistTimeout <= 0 {
		t.Fatalf("expected a default persist timeout, got %v", cfg.Store.PersistTimeout)
	}
	if cfg.Server.Port == "" {
		t.Fatal("expected a default server port")
	}
}
