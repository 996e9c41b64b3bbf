// Package config loads client settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage driver names accepted in configuration.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverDynamo   = "dynamo"
)

// Config holds everything the client process needs to run.
type Config struct {
	APIBaseURL     string        `yaml:"apiBaseURL"`
	RequestTimeout time.Duration `yaml:"-"`

	StorageDriver string `yaml:"storageDriver"`
	StatePath     string `yaml:"statePath"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	PostgresURL   string `yaml:"postgresURL"`
	DynamoTable   string `yaml:"dynamoTable"`

	// RequestTimeoutRaw is the YAML-facing duration string ("15s").
	RequestTimeoutRaw string `yaml:"requestTimeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL:     "http://localhost:5000",
		RequestTimeout: 15 * time.Second,
		StorageDriver:  DriverFile,
		StatePath:      ".storefront/state.json",
	}
}

// Load reads the YAML file at path (missing file is fine: defaults apply),
// then applies STOREFRONT_* environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		if cfg.RequestTimeoutRaw != "" {
			d, err := time.ParseDuration(cfg.RequestTimeoutRaw)
			if err != nil {
				return cfg, fmt.Errorf("parse requestTimeout: %w", err)
			}
			cfg.RequestTimeout = d
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOREFRONT_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("STOREFRONT_STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = v
	}
	if v := os.Getenv("STOREFRONT_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("STOREFRONT_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("STOREFRONT_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("STOREFRONT_DATABASE_URL"); v != "" {
		cfg.PostgresURL = v
	}
	if v := os.Getenv("STOREFRONT_DYNAMO_TABLE"); v != "" {
		cfg.DynamoTable = v
	}
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if c.StatePath == "" {
			return fmt.Errorf("file storage requires statePath")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis storage requires redisAddr")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("postgres storage requires postgresURL")
		}
	case DriverDynamo:
		if c.DynamoTable == "" {
			return fmt.Errorf("dynamo storage requires dynamoTable")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	return nil
}
