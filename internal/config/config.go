package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Redis       RedisConfig     `yaml:"redis"`
	CORS        CORSConfig      `yaml:"cors"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver"`
	URI            string        `yaml:"uri"`
	Name           string        `yaml:"name"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	JWTIssuer  string        `yaml:"jwt_issuer"`
	JWTExpiry  time.Duration `yaml:"jwt_expiry"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// RateLimitConfig holds per-window caps. A cap of zero disables that policy.
type RateLimitConfig struct {
	Window            time.Duration `yaml:"window"`
	LoginPerWindow    int           `yaml:"login_per_window"`
	APIPerWindow      int           `yaml:"api_per_window"`
	WritePerWindow    int           `yaml:"write_per_window"`
	Backend           string        `yaml:"backend"`
	TrustedProxyCIDRs []string      `yaml:"trusted_proxy_cidrs"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// IsDevelopment reports whether error responses may carry internal detail.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			MetricsAddr: "",
		},
		Database: DatabaseConfig{
			Driver:         StoreMongo,
			Name:           "planora",
			ConnectTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			JWTIssuer:  "planora",
			JWTExpiry:  time.Hour,
			BcryptCost: 10,
		},
		RateLimit: RateLimitConfig{
			Window:         15 * time.Minute,
			LoginPerWindow: 5,
			APIPerWindow:   100,
			WritePerWindow: 50,
			Backend:        RateLimitBackendMemory,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "planora-server",
			SampleRate:  1.0,
		},
		// Unset means production so error detail is opt-in.
		Environment: EnvProduction,
	}
}

// Load reads configuration from the environment only.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile loads a dotenv file for the current environment, overlays the
// optional YAML file on the defaults and then applies environment variables,
// which always win.
func LoadFile(path string) (Config, error) {
	if err := loadDotenv(); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", cfg.Environment))

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.MetricsAddr = getEnv("METRICS_ADDR", cfg.Server.MetricsAddr)

	cfg.Database.Driver = strings.ToLower(getEnv("STORE_DRIVER", cfg.Database.Driver))
	cfg.Database.URI = getEnv("MONGODB_URI", cfg.Database.URI)
	cfg.Database.Name = getEnv("MONGODB_DATABASE", cfg.Database.Name)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", cfg.Auth.JWTIssuer)
	cfg.Auth.JWTExpiry = getEnvMinutes("JWT_EXPIRY_MINUTES", cfg.Auth.JWTExpiry)
	cfg.Auth.BcryptCost = getEnvInt("BCRYPT_COST", cfg.Auth.BcryptCost)

	cfg.RateLimit.Window = getEnvMinutes("RATE_LIMIT_WINDOW_MINUTES", cfg.RateLimit.Window)
	cfg.RateLimit.LoginPerWindow = getEnvInt("RATE_LIMIT_LOGIN", cfg.RateLimit.LoginPerWindow)
	cfg.RateLimit.APIPerWindow = getEnvInt("RATE_LIMIT_API", cfg.RateLimit.APIPerWindow)
	cfg.RateLimit.WritePerWindow = getEnvInt("RATE_LIMIT_WRITE", cfg.RateLimit.WritePerWindow)
	cfg.RateLimit.Backend = strings.ToLower(getEnv("RATE_LIMIT_BACKEND", cfg.RateLimit.Backend))
	cfg.RateLimit.TrustedProxyCIDRs = getEnvList("TRUSTED_PROXY_CIDRS", cfg.RateLimit.TrustedProxyCIDRs)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)
	// Browser clients on any localhost port are allowed outside production.
	cfg.CORS.AllowAllOrigins = cfg.Environment != EnvProduction

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.File = getEnv("LOG_FILE", cfg.Logging.File)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)
}

func (c Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, test, production (got %q)", c.Environment)
	}

	switch c.Database.Driver {
	case StoreMongo:
		if c.Database.URI == "" {
			return errors.New("MONGODB_URI is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be mongo or memory (got %q)", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Environment == EnvProduction && len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes in production")
	}
	if c.Auth.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31 (got %d)", c.Auth.BcryptCost)
	}

	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW_MINUTES must be positive")
	}
	switch c.RateLimit.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis (got %q)", c.RateLimit.Backend)
	}
	return nil
}

// loadDotenv mirrors the usual node convention: .env.test under ENVIRONMENT=test,
// .env otherwise. Variables already set in the process are left untouched.
func loadDotenv() error {
	file := ".env"
	if strings.EqualFold(os.Getenv("ENVIRONMENT"), EnvTest) {
		file = ".env.test"
	}
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvMinutes(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return time.Duration(parsed) * time.Minute
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
