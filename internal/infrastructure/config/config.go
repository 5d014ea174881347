package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the per-project settings directory.
	ConfigDirName = ".sheetwright"
	configFile    = "config.yaml"
)

// StoreConfig selects the artifact store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "memory" or "sqlite"
	Path    string `yaml:"path,omitempty"`
}

// ThresholdConfig optionally overrides drift thresholds. Zero fields fall
// back to the documented defaults.
type ThresholdConfig struct {
	AcceptCanvas float64 `yaml:"accept_canvas,omitempty"`
	RetryCanvas  float64 `yaml:"retry_canvas,omitempty"`
	RegionFloor  float64 `yaml:"region_floor,omitempty"`
	TargetFloor  float64 `yaml:"target_floor,omitempty"`
	SpecRetry    float64 `yaml:"spec_retry,omitempty"`
	SpecReject   float64 `yaml:"spec_reject,omitempty"`
}

// Config stores project-level pipeline settings.
type Config struct {
	Provider            string           `yaml:"provider"`
	Model               string           `yaml:"model,omitempty"`
	BaseURL             string           `yaml:"base_url,omitempty"`
	Reasoner            string           `yaml:"reasoner,omitempty"`
	ImageDir            string           `yaml:"image_dir,omitempty"`
	RateIntervalSeconds int              `yaml:"rate_interval_seconds,omitempty"`
	Store               StoreConfig      `yaml:"store"`
	Thresholds          *ThresholdConfig `yaml:"thresholds,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider: "diffusion",
		Store:    StoreConfig{Backend: "sqlite", Path: filepath.Join(ConfigDirName, "artifacts.db")},
	}
}

// Load reads the project config under root, returning defaults when the
// file does not exist.
func Load(root string) (*Config, error) {
	path, err := resolvePath(root, configFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes the project config under root, creating the settings
// directory if needed.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	path, err := resolvePath(root, configFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// resolvePath confines settings files to the project settings directory.
func resolvePath(root, name string) (string, error) {
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid config file name: %q", name)
	}
	dir := filepath.Join(root, ConfigDirName)
	path := filepath.Join(dir, name)
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("config path escapes settings directory: %q", name)
	}
	return path, nil
}
