package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_RequiresCareAPIURL(t *testing.T) {
	os.Unsetenv("CARE_API_URL")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when CARE_API_URL is missing")
	}
}

func TestLoad_WithCareAPIURL(t *testing.T) {
	os.Setenv("CARE_API_URL", "http://localhost:3001")
	defer os.Unsetenv("CARE_API_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CareAPIURL != "http://localhost:3001" {
		t.Errorf("expected CARE_API_URL to be set, got %s", cfg.CareAPIURL)
	}

	if cfg.Port != "8600" {
		t.Errorf("expected default port 8600, got %s", cfg.Port)
	}

	if cfg.CareAPITimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %s", cfg.CareAPITimeout)
	}

	if cfg.DefaultDuration != 60 {
		t.Errorf("expected default visit duration 60, got %d", cfg.DefaultDuration)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_ResolvedAuthMode(t *testing.T) {
	c := &Config{Env: "development"}
	if c.ResolvedAuthMode() != "development" {
		t.Errorf("expected development mode, got %s", c.ResolvedAuthMode())
	}

	c = &Config{Env: "production"}
	if c.ResolvedAuthMode() != "bearer" {
		t.Errorf("expected bearer mode, got %s", c.ResolvedAuthMode())
	}

	c = &Config{Env: "production", AuthMode: "development"}
	if c.ResolvedAuthMode() != "development" {
		t.Errorf("expected explicit AUTH_MODE to win, got %s", c.ResolvedAuthMode())
	}
}

func TestConfig_Validate(t *testing.T) {
	c := &Config{Env: "production", CareAPITimeout: 10 * time.Second, DefaultDuration: 60}
	if err := c.Validate(); err == nil {
		t.Error("expected error when JWT_SECRET missing in bearer mode")
	}

	c.JWTSecret = "secret"
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	c.DefaultDuration = 42
	if err := c.Validate(); err == nil {
		t.Error("expected error for duration outside the option set")
	}

	c.DefaultDuration = 60
	c.CareAPITimeout = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for non-positive timeout")
	}
}
