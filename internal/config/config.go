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
	defaultAppEnv     = "dev"
	defaultHTTPAddr   = ":8080"
	defaultDSN        = "equiprent.db"
	defaultJWTSecret  = "change-me-jwt-secret"
	defaultJWTTTL     = 12 * time.Hour
	defaultShutdown   = 10 * time.Second
	defaultSweepEvery = time.Hour
	defaultRateLimit  = 30
	defaultRateWindow = time.Minute
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
	Redis    RedisConfig    `yaml:"redis"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`
}

// AdminConfig seeds the first back-office account on startup when both fields are set.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// Enabled reports whether the public rate limiter should be wired.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

type SweeperConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		App:      AppConfig{Name: "equiprent", Env: defaultAppEnv},
		HTTP:     HTTPConfig{Addr: defaultHTTPAddr, ShutdownTimeout: defaultShutdown},
		Database: DatabaseConfig{DSN: defaultDSN},
		Auth:     AuthConfig{JWTSecret: defaultJWTSecret, JWTTTL: defaultJWTTTL},
		Admin:    AdminConfig{Name: "Administrator"},
		Redis:    RedisConfig{RateLimit: defaultRateLimit, RateWindow: defaultRateWindow},
		Sweeper:  SweeperConfig{Enabled: true, Interval: defaultSweepEvery},
		Metrics:  MetricsConfig{Enabled: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads .env (if present), then the YAML file at path (if path is not empty),
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv != "" {
		cfg.App.Env = appEnv
	}
	cfg.App.Env = strings.ToLower(cfg.App.Env)

	cfg.HTTP.Addr = strings.TrimSpace(getEnv("HTTP_ADDR", cfg.HTTP.Addr))
	cfg.Database.DSN = strings.TrimSpace(getEnv("DATABASE_URL", cfg.Database.DSN))
	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Admin.Email = strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", cfg.Admin.Email)))
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", cfg.Admin.Password)
	cfg.Redis.Addr = strings.TrimSpace(getEnv("REDIS_ADDR", cfg.Redis.Addr))
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Log.Level = strings.TrimSpace(getEnv("LOG_LEVEL", cfg.Log.Level))

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.HTTP.AllowedOrigins = append(cfg.HTTP.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.Auth.JWTTTL, err = parseDurationEnv("JWT_TTL", cfg.Auth.JWTTTL); err != nil {
		return err
	}
	if cfg.Sweeper.Interval, err = parseDurationEnv("SWEEPER_INTERVAL", cfg.Sweeper.Interval); err != nil {
		return err
	}
	cfg.Sweeper.Enabled = parseBoolEnv("SWEEPER_ENABLED", cfg.Sweeper.Enabled)
	cfg.Metrics.Enabled = parseBoolEnv("METRICS_ENABLED", cfg.Metrics.Enabled)

	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB value %q: %w", v, err)
		}
		cfg.Redis.DB = db
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Sweeper.Enabled && cfg.Sweeper.Interval <= 0 {
		return fmt.Errorf("SWEEPER_INTERVAL must be > 0")
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout must be > 0")
	}
	if cfg.Redis.Enabled() && (cfg.Redis.RateLimit <= 0 || cfg.Redis.RateWindow <= 0) {
		return fmt.Errorf("redis.rate_limit and redis.rate_window must be > 0")
	}
	if (cfg.Admin.Email == "") != (cfg.Admin.Password == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	if IsProdLike(cfg.App.Env) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if value == "" {
		return fallback
	}
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
