// Package config loads the settings of the fung command line and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every setting. Files may be YAML or TOML; FUNG_* environment
// variables override them.
type Config struct {
	Server  Server  `yaml:"server" toml:"server"`
	Log     Log     `yaml:"log" toml:"log"`
	Metrics Metrics `yaml:"metrics" toml:"metrics"`
	Batch   Batch   `yaml:"batch" toml:"batch"`
}

type Server struct {
	Port         int           `yaml:"port" toml:"port" validate:"gte=1,lte=65535"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" toml:"max_body_bytes" validate:"gte=1024"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" toml:"idle_timeout" validate:"gt=0"`
	ShutdownWait time.Duration `yaml:"shutdown_wait" toml:"shutdown_wait" validate:"gt=0"`
}

type Log struct {
	Level string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json" toml:"json"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Namespace string `yaml:"namespace" toml:"namespace" validate:"required_if=Enabled true"`
}

type Batch struct {
	// Workers bounds concurrent evaluations; 0 means one per CPU.
	Workers int `yaml:"workers" toml:"workers" validate:"gte=0,lte=1024"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: Server{
			Port:         8080,
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			ShutdownWait: 10 * time.Second,
		},
		Log:     Log{Level: "info"},
		Metrics: Metrics{Enabled: true, Namespace: "fung"},
	}
}

// Load reads path on top of the defaults, applies the environment and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the value ranges of cfg.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unsupported config format", path)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("FUNG_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FUNG_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("FUNG_LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("FUNG_LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FUNG_LOG_JSON: %w", err)
		}
		cfg.Log.JSON = b
	}
	if v, ok := lookup("FUNG_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FUNG_METRICS: %w", err)
		}
		cfg.Metrics.Enabled = b
	}
	if v, ok := lookup("FUNG_BATCH_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FUNG_BATCH_WORKERS: %w", err)
		}
		cfg.Batch.Workers = n
	}
	return nil
}
