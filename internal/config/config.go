// Package config handles global configuration for the mdcite CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the global configuration stored in ~/.config/mdcite/config.yml.
// Every field is optional; the zero value runs fully offline. The API key is
// excluded from serialization: it comes only from the environment (or .env)
// and must never end up on disk, no matter who calls Save.
type Config struct {
	OllamaURL     string   `yaml:"ollama_url,omitempty"`
	OllamaModels  []string `yaml:"ollama_models,omitempty"`
	OpenAIBaseURL string   `yaml:"openai_base_url,omitempty"`
	OpenAIAPIKey  string   `yaml:"-"`
	OpenAIModels  []string `yaml:"openai_models,omitempty"`
	FlagThreshold float64  `yaml:"flag_threshold,omitempty"`
	WindowLines   int      `yaml:"window_lines,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "mdcite"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// HistoryFile is the scan-history database name under the cache dir.
	HistoryFile = "history.db"
)

// Path returns the path to the global config file. Respects XDG_CONFIG_HOME,
// defaults to ~/.config/mdcite/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// HistoryPath returns the path to the scan-history database. Respects
// XDG_CACHE_HOME, defaults to the user cache directory.
func HistoryPath() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		d, err := os.UserCacheDir()
		if err != nil {
			return ""
		}
		cacheHome = d
	}
	return filepath.Join(cacheHome, ConfigDir, HistoryFile)
}

// Load reads the global configuration and applies environment overrides.
// A missing file yields an empty config, not an error. The API key is
// populated from the environment only; the file never carries it.
func Load() (*Config, error) {
	var cfg Config

	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	// Environment wins over the file so CI and one-off runs can override.
	if v := os.Getenv("MDCITE_OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}

	return &cfg, nil
}

// Save writes the configuration to the global config file, creating the
// directory if needed.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
