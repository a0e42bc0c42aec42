package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "TASKFLOW_CONFIG"
	portEnv          = "PORT"
	backendEnv       = "TASKFLOW_BACKEND"
	dbPathEnv        = "DB_PATH"
	redisAddrEnv     = "REDIS_ADDR"
	redisPasswordEnv = "REDIS_PASSWORD"
	redisDBEnv       = "REDIS_DB"
	timezoneEnv      = "TASKFLOW_TIMEZONE"
	logLevelEnv      = "LOG_LEVEL"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var defaultLocations = []string{"taskflow.yaml", "taskflow.yml", ".taskflow.yaml", ".taskflow.yml"}

// Config is the taskflow.yaml structure.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Storage struct {
		Backend    string `yaml:"backend"`
		SQLitePath string `yaml:"sqlite_path"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	// Timezone decides calendar-day boundaries for analytics. Empty means the host's local zone.
	Timezone string `yaml:"timezone"`

	Backup struct {
		RecomputeCounts bool `yaml:"recompute_counts"`
	} `yaml:"backup"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config file at path (or the first default location found),
// applies defaults and environment overrides, and validates the result.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfigPath()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func findConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}

	for _, loc := range defaultLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "./data/taskflow.db"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "taskflow:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv(portEnv, c.Server.Port)
	c.Storage.Backend = getEnv(backendEnv, c.Storage.Backend)
	c.Storage.SQLitePath = getEnv(dbPathEnv, c.Storage.SQLitePath)
	c.Storage.Redis.Addr = getEnv(redisAddrEnv, c.Storage.Redis.Addr)
	c.Storage.Redis.Password = getEnv(redisPasswordEnv, c.Storage.Redis.Password)
	c.Timezone = getEnv(timezoneEnv, c.Timezone)
	c.Log.Level = getEnv(logLevelEnv, c.Log.Level)

	if raw := os.Getenv(redisDBEnv); raw != "" {
		db, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidRedisDB, raw)
		}
		c.Storage.Redis.DB = db
	}

	return nil
}

// Validate checks the config for values the store cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidBackend)
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Server.Port)
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return ErrSQLitePathMissing
		}
	case BackendRedis:
		if strings.TrimSpace(c.Storage.Redis.Addr) == "" {
			return ErrRedisAddrMissing
		}
		if c.Storage.Redis.DB < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidRedisDB, c.Storage.Redis.DB)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Storage.Backend)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}

	return loc, nil
}

// Save writes cfg as YAML to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}
