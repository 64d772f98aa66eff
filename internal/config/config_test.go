package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/hms_test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "2000" {
		t.Errorf("expected default port 2000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development env by default")
	}
	if cfg.TokenTTLMinutes != 30 {
		t.Errorf("expected default token ttl 30, got %d", cfg.TokenTTLMinutes)
	}
}

func TestValidate_RequiresDatabaseURL(t *testing.T) {
	cfg := &Config{Env: "development", TokenTTLMinutes: 30}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_RequiresJWTSecretOutsideDev(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		DatabaseURL:     "postgres://localhost/hms",
		TokenTTLMinutes: 30,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
