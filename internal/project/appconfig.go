package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/BinPack/internal/model"
	"github.com/spf13/viper"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.binpack/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".binpack")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// EnvPrefix prefixes environment variables that override config file
// values, e.g. BINPACK_LOG_LEVEL=debug.
const EnvPrefix = "BINPACK"

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns the defaults with no error.
// Fields missing from the file keep their default values, and any field can
// be overridden from the environment.
func LoadAppConfig(path string) (model.AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := model.DefaultAppConfig()
	v.SetDefault("default_algorithm", string(defaults.DefaultAlgorithm))
	v.SetDefault("default_parallel", defaults.DefaultParallel)
	v.SetDefault("default_population", defaults.DefaultPopulation)
	v.SetDefault("default_generations", defaults.DefaultGenerations)
	v.SetDefault("default_mutation_rate", defaults.DefaultMutation)
	v.SetDefault("default_seed", defaults.DefaultSeed)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("recent_requests", defaults.RecentRequests)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return model.AppConfig{}, err
	}

	var config model.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if config.RecentRequests == nil {
		config.RecentRequests = []string{}
	}
	return config, nil
}

// writeJSON marshals v with indentation and writes it to path, creating
// parent directories as needed.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
