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

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Session     SessionConfig     `yaml:"session"`
	Redis       RedisConfig       `yaml:"redis"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Exa         ExaConfig         `yaml:"exa"`
	USDA        USDAConfig        `yaml:"usda"`
	Nutritionix NutritionixConfig `yaml:"nutritionix"`
	Scraper     ScraperConfig     `yaml:"scraper"`
	Snapshot    SnapshotConfig    `yaml:"snapshot"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	APIKey          string   `yaml:"-"` // env-only, never in YAML
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig contains pending-interaction session settings.
type SessionConfig struct {
	Backend       string   `yaml:"backend"` // memory or redis
	TTL           Duration `yaml:"ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// RedisConfig contains Redis connection settings for the session store.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// InterpreterConfig selects the interpretation mode.
type InterpreterConfig struct {
	Mode string `yaml:"mode"` // ai or api
}

// OpenAIConfig contains language model settings.
type OpenAIConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
	Model  string `yaml:"model"`
}

// ExaConfig contains web search settings.
type ExaConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// USDAConfig contains USDA FoodData Central settings.
type USDAConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// NutritionixConfig contains Nutritionix API settings.
type NutritionixConfig struct {
	AppID  string `yaml:"-"` // env-only, never in YAML
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// ScraperConfig contains nutrition website scraper settings.
type ScraperConfig struct {
	Enabled bool     `yaml:"enabled"`
	Timeout Duration `yaml:"timeout"`
}

// SnapshotConfig contains database snapshot and S3 upload settings.
type SnapshotConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Interval  Duration `yaml:"interval"`
	Endpoint  string   `yaml:"endpoint"`
	Bucket    string   `yaml:"bucket"`
	Region    string   `yaml:"region"`
	UseSSL    *bool    `yaml:"use_ssl"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("CALIT_CONFIG_PATH", "config/calit.yaml")

	// Missing YAML file is not an error; defaults apply
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	normalize(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	normalize(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/calit.db",
		},
		Session: SessionConfig{
			Backend:       "memory",
			TTL:           Duration(30 * time.Minute),
			SweepInterval: Duration(1 * time.Minute),
		},
		Interpreter: InterpreterConfig{
			Mode: "api",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Scraper: ScraperConfig{
			Enabled: true,
			Timeout: Duration(10 * time.Second),
		},
		Snapshot: SnapshotConfig{
			Enabled:  false,
			Interval: Duration(1 * time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("CALIT_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CALIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CALIT_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("CALIT_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("CALIT_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("CALIT_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("CALIT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Session
	if v := os.Getenv("CALIT_SESSION_BACKEND"); v != "" {
		cfg.Session.Backend = v
	}
	if v := os.Getenv("CALIT_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = Duration(d)
		}
	}
	if v := os.Getenv("CALIT_SESSION_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.SweepInterval = Duration(d)
		}
	}
	if v := os.Getenv("CALIT_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}

	// Interpreter
	if v := os.Getenv("CALIT_MODE"); v != "" {
		cfg.Interpreter.Mode = v
	}

	// Backends
	if v := os.Getenv("CALIT_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("CALIT_OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("CALIT_EXA_API_KEY"); v != "" {
		cfg.Exa.APIKey = v
	}
	if v := os.Getenv("CALIT_USDA_API_KEY"); v != "" {
		cfg.USDA.APIKey = v
	}
	if v := os.Getenv("CALIT_NUTRITIONIX_APP_ID"); v != "" {
		cfg.Nutritionix.AppID = v
	}
	if v := os.Getenv("CALIT_NUTRITIONIX_APP_KEY"); v != "" {
		cfg.Nutritionix.APIKey = v
	}

	// Scraper
	if v := os.Getenv("CALIT_SCRAPER_ENABLED"); v != "" {
		cfg.Scraper.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CALIT_SCRAPER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scraper.Timeout = Duration(d)
		}
	}

	// Snapshot
	if v := os.Getenv("CALIT_SNAPSHOT_ENABLED"); v != "" {
		cfg.Snapshot.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CALIT_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Snapshot.Interval = Duration(d)
		}
	}
	if v := os.Getenv("CALIT_SNAPSHOT_ENDPOINT"); v != "" {
		cfg.Snapshot.Endpoint = v
	}
	if v := os.Getenv("CALIT_SNAPSHOT_BUCKET"); v != "" {
		cfg.Snapshot.Bucket = v
	}
	if v := os.Getenv("CALIT_SNAPSHOT_REGION"); v != "" {
		cfg.Snapshot.Region = v
	}
	if v := os.Getenv("CALIT_SNAPSHOT_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Snapshot.UseSSL = &useSSL
	}
	if v := os.Getenv("CALIT_SNAPSHOT_ACCESS_KEY"); v != "" {
		cfg.Snapshot.AccessKey = v
	}
	if v := os.Getenv("CALIT_SNAPSHOT_SECRET_KEY"); v != "" {
		cfg.Snapshot.SecretKey = v
	}

	// Log
	if v := os.Getenv("CALIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CALIT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// normalize lowercases enum-valued fields so YAML and env spellings agree.
func normalize(cfg *Config) {
	cfg.Interpreter.Mode = strings.ToLower(strings.TrimSpace(cfg.Interpreter.Mode))
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
}

// validate checks that required configuration values are set.
// In dev mode (CALIT_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Interpreter.Mode != "ai" && c.Interpreter.Mode != "api" {
		return fmt.Errorf("invalid interpreter mode %q (want ai or api)", c.Interpreter.Mode)
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis session backend requires redis.url or CALIT_REDIS_URL")
		}
	default:
		return fmt.Errorf("invalid session backend %q (want memory or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}

	// Dev mode bypasses API key validation
	if os.Getenv("CALIT_DEV_MODE") == "true" {
		return nil
	}

	if c.Server.APIKey == "" {
		return errors.New("CALIT_API_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
