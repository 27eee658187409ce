package config

import (
	"testing"
	"time"

	"kv-shepherd.io/shepherd/internal/storage"
)

func validConfig() *Config {
	return &Config{
		Security: SecurityConfig{
			TokenSigningKey: "0123456789012345678901234567890123456789",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			BcryptCost:      10,
		},
		Backend: BackendConfig{Kind: storage.BackendMemory},
	}
}

func TestValidate_RejectsShortSigningKey(t *testing.T) {
	cfg := validConfig()
	cfg.Security.TokenSigningKey = "too-short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a short signing key")
	}
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Kind = storage.Backend("bogus")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown backend kind")
	}
}

func TestValidate_AcceptsEachKnownBackend(t *testing.T) {
	for _, kind := range []storage.Backend{storage.BackendMemory, storage.BackendSQL, storage.BackendWideColumn} {
		cfg := validConfig()
		cfg.Backend.Kind = kind
		if err := cfg.Validate(); err != nil {
			t.Errorf("backend %q: unexpected error: %v", kind, err)
		}
	}
}

func TestEnsureSecrets_GeneratesKeyWhenMissing(t *testing.T) {
	cfg := validConfig()
	cfg.Security.TokenSigningKey = ""

	if err := cfg.ensureSecrets(); err != nil {
		t.Fatalf("ensureSecrets: %v", err)
	}
	if len(cfg.Security.TokenSigningKey) < 32 {
		t.Fatalf("generated signing key too short: %q", cfg.Security.TokenSigningKey)
	}
}

func TestEnsureSecrets_KeepsExistingKey(t *testing.T) {
	cfg := validConfig()
	want := cfg.Security.TokenSigningKey

	if err := cfg.ensureSecrets(); err != nil {
		t.Fatalf("ensureSecrets: %v", err)
	}
	if cfg.Security.TokenSigningKey != want {
		t.Fatalf("signing key changed: got %q, want %q", cfg.Security.TokenSigningKey, want)
	}
}

func TestDatabaseConfig_DSN_PrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://explicit"}
	if got := c.DSN(); got != "postgres://explicit" {
		t.Fatalf("DSN() = %q, want %q", got, "postgres://explicit")
	}
}

func TestDatabaseConfig_DSN_BuildsFromFields(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "voting", Password: "pw", Database: "voting", SSLMode: "disable"}
	want := "postgres://voting:pw@db:5432/voting?sslmode=disable"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

func TestDatabaseConfig_DSN_DefaultsSSLMode(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "voting", Password: "pw", Database: "voting"}
	want := "postgres://voting:pw@db:5432/voting?sslmode=disable"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
