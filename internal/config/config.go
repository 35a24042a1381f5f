package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no path is given on the command line or in the environment.
const DefaultConfigPath = "config.yaml"

// AppConfig holds process-level inputs resolved from the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the YAML configuration file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout"`
}

// DatabaseConfig configures the catalog database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig configures the card cache. An empty address selects the in-memory cache.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key-prefix"`
}

// JWTConfig configures admin token signing.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stdout
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// ResolveConfigPath returns path, falling back to LISTING_CONFIG and then DefaultConfigPath.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv("LISTING_CONFIG")); env != "" {
		return env
	}
	return DefaultConfigPath
}

// ConfigExists reports whether the config file is present.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the config file, applies LISTING_* environment overrides and defaults.
// A missing file is not an error; defaults and environment still apply.
func Load(path string) (Config, error) {
	var cfg Config
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	if errEnv := applyEnv(&cfg); errEnv != nil {
		return Config{}, errEnv
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadDatabaseDSN loads the config at path and returns the database DSN.
func LoadDatabaseDSN(path string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return "", errors.New("config: database dsn is empty")
	}
	return cfg.Database.DSN, nil
}

// LoadJWTConfig loads the config at path and returns the JWT settings.
func LoadJWTConfig(path string) (JWTConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return JWTConfig{}, err
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return cfg.JWT, errors.New("config: jwt secret is empty")
	}
	return cfg.JWT, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("LISTING_SERVER_ADDR", &cfg.Server.Addr)
	setString("LISTING_SERVER_MODE", &cfg.Server.Mode)
	setString("LISTING_DATABASE_DSN", &cfg.Database.DSN)
	setString("LISTING_REDIS_ADDR", &cfg.Redis.Addr)
	setString("LISTING_REDIS_PASSWORD", &cfg.Redis.Password)
	setString("LISTING_JWT_SECRET", &cfg.JWT.Secret)
	setString("LISTING_LOG_LEVEL", &cfg.Log.Level)
	setString("LISTING_LOG_FILE", &cfg.Log.File)

	if v, ok := os.LookupEnv("LISTING_REDIS_DB"); ok && strings.TrimSpace(v) != "" {
		n, errParse := strconv.Atoi(strings.TrimSpace(v))
		if errParse != nil {
			return fmt.Errorf("config: LISTING_REDIS_DB: %w", errParse)
		}
		cfg.Redis.DB = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "data/listing.db"
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = 12 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 30
	}
}
