package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL string      `mapstructure:"server_url" yaml:"server_url"`
	DBName    string      `mapstructure:"db_name" yaml:"db_name"`
	Login     LoginConfig `mapstructure:"login" yaml:"login"`
}

// LoginConfig prefills the login form; the password is never stored.
type LoginConfig struct {
	Email      string `mapstructure:"email" yaml:"email,omitempty"`
	Department string `mapstructure:"department" yaml:"department,omitempty"`
}

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}
	return LoadFrom(filepath.Join(configDir, "railgpt"))
}

// LoadFrom reads config from the given directory, falling back to defaults
// when no file exists.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	v.SetDefault("server_url", "http://localhost:8000")
	v.SetDefault("db_name", "rag_db")

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolved, err := ResolveValue(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server_url: %w", err)
	}
	cfg.ServerURL = resolved
	if env := os.Getenv("RAILGPT_SERVER_URL"); env != "" {
		cfg.ServerURL = env
	}
	if env := os.Getenv("RAILGPT_DB_NAME"); env != "" {
		cfg.DBName = env
	}

	return &cfg, nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "railgpt", "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the config as YAML to an explicit path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0600)
}
