package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "12345678901234567890123456789012"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Auth.JWTExpiry != time.Hour {
		t.Errorf("expected 1h token expiry, got %s", cfg.Auth.JWTExpiry)
	}
	if cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("expected 15m window, got %s", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.LoginPerWindow != 5 || cfg.RateLimit.APIPerWindow != 100 || cfg.RateLimit.WritePerWindow != 50 {
		t.Errorf("unexpected rate limit caps: %+v", cfg.RateLimit)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode")
	}
}

func TestLoad_UnsetEnvironmentIsProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Environment != EnvProduction {
		t.Errorf("expected production, got %q", cfg.Environment)
	}
	if cfg.IsDevelopment() {
		t.Error("expected error detail to stay hidden without an explicit development mode")
	}
	if cfg.CORS.AllowAllOrigins {
		t.Error("expected AllowAllOrigins to be false")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoad_MissingMongoURI(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "MONGODB_URI") {
		t.Fatalf("expected MONGODB_URI error, got %v", err)
	}
}

func TestLoad_MemoryStoreNeedsNoURI(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.Driver != StoreMemory {
		t.Errorf("expected memory driver, got %s", cfg.Database.Driver)
	}
}

func TestLoad_ProductionShortSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Fatalf("expected short secret error, got %v", err)
	}
}

func TestLoad_ProductionCORS(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com, https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.CORS.AllowAllOrigins {
		t.Error("expected AllowAllOrigins to be false in production")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://app.example.com" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_RedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected REDIS_ADDR error, got %v", err)
	}
}

func TestLoad_UnknownEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
environment: development
server:
  port: 9090
database:
  driver: memory
auth:
  jwt_secret: from-file
  jwt_expiry: 30m
rate_limit:
  login_per_window: 3
  window: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("expected secret from file, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.JWTExpiry != 30*time.Minute {
		t.Errorf("expected 30m expiry, got %s", cfg.Auth.JWTExpiry)
	}
	if cfg.RateLimit.LoginPerWindow != 3 || cfg.RateLimit.Window != 10*time.Minute {
		t.Errorf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
	// defaults survive a partial file
	if cfg.RateLimit.APIPerWindow != 100 {
		t.Errorf("expected default api cap, got %d", cfg.RateLimit.APIPerWindow)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
