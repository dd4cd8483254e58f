package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds playclockd settings. Values come from the optional YAML file,
// overridden by environment variables.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Backend struct {
		BaseURL         string `yaml:"base_url"`
		APIKey          string `yaml:"api_key"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"backend"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Backend.BaseURL = "http://localhost:3000"
	cfg.Backend.PollIntervalSec = 10
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.SubjectPrefix = "playclock"
	return cfg
}

// loadConfig reads the YAML file when present, then applies env overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Server.Addr = getEnv("PLAYCLOCK_ADDR", cfg.Server.Addr)
	cfg.Backend.BaseURL = getEnv("PLAYCLOCK_BACKEND_URL", cfg.Backend.BaseURL)
	cfg.Backend.APIKey = getEnv("PLAYCLOCK_BACKEND_API_KEY", cfg.Backend.APIKey)
	cfg.Backend.PollIntervalSec = getEnvAsInt("PLAYCLOCK_POLL_INTERVAL_SEC", cfg.Backend.PollIntervalSec)
	if v := os.Getenv("PLAYCLOCK_NATS_ENABLED"); v != "" {
		cfg.NATS.Enabled = v == "true" || v == "1"
	}
	cfg.NATS.URL = getEnv("PLAYCLOCK_NATS_URL", cfg.NATS.URL)
	cfg.NATS.SubjectPrefix = getEnv("PLAYCLOCK_NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix)

	if cfg.Backend.PollIntervalSec <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %d", cfg.Backend.PollIntervalSec)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
