// Package config loads service configuration from yaml with env fallbacks.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageConfig defines object storage settings.
type StorageConfig struct {
	BaseURL string `yaml:"base_url"`
	Bucket  string `yaml:"bucket"`
	APIKey  string `yaml:"api_key"`
}

// PhotoConfig tunes the photo pipeline.
type PhotoConfig struct {
	TargetKB   int `yaml:"target_kb"`
	MaxInputMB int `yaml:"max_input_mb"`
}

// Config defines service configuration.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DatabaseURL    string        `yaml:"database_url"`
	JWTSecret      string        `yaml:"jwt_secret"`
	Storage        StorageConfig `yaml:"storage"`
	Photo          PhotoConfig   `yaml:"photo"`
	ResetDelay     time.Duration `yaml:"reset_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Load reads config from the file named by INFRASITES_CONFIG, if set,
// with env values filling anything the file leaves empty.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:     getenvDefault("LISTEN_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RequestTimeout: 30 * time.Second,
		Storage: StorageConfig{
			BaseURL: os.Getenv("STORAGE_BASE_URL"),
			Bucket:  getenvDefault("STORAGE_BUCKET", "photos"),
			APIKey:  os.Getenv("STORAGE_API_KEY"),
		},
		Photo: PhotoConfig{
			TargetKB:   getenvIntDefault("PHOTO_TARGET_KB", 450),
			MaxInputMB: getenvIntDefault("PHOTO_MAX_INPUT_MB", 20),
		},
	}

	if path := os.Getenv("INFRASITES_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: database url required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
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
