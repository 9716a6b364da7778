package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	StorePath string `yaml:"store_path" json:"store_path"` // Path to the entity store database
	IndexPath string `yaml:"index_path" json:"index_path"` // Path to the search index database
	Owner     string `yaml:"owner" json:"owner"`           // Owner name stamped on shared projects

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Also log to stderr
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	var storePath, indexPath, logPath string
	if home != "" {
		storePath = filepath.Join(home, ".portfolio", "portfolio.db")
		indexPath = filepath.Join(home, ".portfolio", "search.db")
		logPath = filepath.Join(home, ".portfolio", "logs", "portfolio.log")
	}

	return &Config{
		StorePath:  getEnv("PORTFOLIO_STORE", storePath),
		IndexPath:  getEnv("PORTFOLIO_INDEX", indexPath),
		LogLevel:   getEnv("PORTFOLIO_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("PORTFOLIO_LOG_FILE", logPath),
		LogConsole: getEnv("PORTFOLIO_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".portfolio", "config.yaml"), nil
}

// Load loads config from ~/.portfolio/config.yaml, falling back to
// defaults when the file does not exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.portfolio/config.yaml
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
