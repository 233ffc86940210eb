// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the runtime settings for the report service. Values are
// resolved from defaults, an optional YAML file, then environment variables,
// with later layers winning.
type Config struct {
	Addr         string `yaml:"addr"`
	DatabasePath string `yaml:"database_path"`

	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"-"`
	MaxParallel int           `yaml:"max_parallel"`
	LLMTimeout  time.Duration `yaml:"llm_timeout"`

	ProxycurlKey  string `yaml:"-"`
	FinanceAPIKey string `yaml:"-"`

	DefaultQuota int `yaml:"default_quota"`
}

// DefaultConfig returns the baseline configuration used when no overrides are
// supplied.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		DatabasePath: filepath.Join("data", "povd.db"),
		Provider:     "openai",
		Model:        "gpt-4o",
		MaxParallel:  8,
		LLMTimeout:   5 * time.Minute,
		DefaultQuota: 25,
	}
}

// Load builds a Config from defaults, the optional file named by
// POVD_CONFIG_FILE, and environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv("POVD_CONFIG_FILE")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, loaded)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg = applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if strings.TrimSpace(overlay.Addr) != "" {
		base.Addr = overlay.Addr
	}
	if strings.TrimSpace(overlay.DatabasePath) != "" {
		base.DatabasePath = overlay.DatabasePath
	}
	if strings.TrimSpace(overlay.Provider) != "" {
		base.Provider = overlay.Provider
	}
	if strings.TrimSpace(overlay.Model) != "" {
		base.Model = overlay.Model
	}
	if strings.TrimSpace(overlay.BaseURL) != "" {
		base.BaseURL = overlay.BaseURL
	}
	if overlay.MaxParallel > 0 {
		base.MaxParallel = overlay.MaxParallel
	}
	if overlay.LLMTimeout > 0 {
		base.LLMTimeout = overlay.LLMTimeout
	}
	if overlay.DefaultQuota > 0 {
		base.DefaultQuota = overlay.DefaultQuota
	}
	return base
}

func applyEnv(cfg *Config) error {
	if value := strings.TrimSpace(os.Getenv("POVD_ADDR")); value != "" {
		cfg.Addr = value
	}
	if value := strings.TrimSpace(os.Getenv("POVD_DB_PATH")); value != "" {
		cfg.DatabasePath = value
	}
	if value := strings.TrimSpace(os.Getenv("POVD_PROVIDER")); value != "" {
		cfg.Provider = strings.ToLower(value)
	}
	if value := strings.TrimSpace(os.Getenv("POVD_MODEL")); value != "" {
		cfg.Model = value
	}
	if value := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); value != "" {
		cfg.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); value != "" {
		cfg.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("PROXYCURL_API_KEY")); value != "" {
		cfg.ProxycurlKey = value
	}
	if value := strings.TrimSpace(os.Getenv("FINANCE_API_KEY")); value != "" {
		cfg.FinanceAPIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("POVD_MAX_PARALLEL")); value != "" {
		parallel, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse POVD_MAX_PARALLEL: %w", err)
		}
		cfg.MaxParallel = parallel
	}
	if value := strings.TrimSpace(os.Getenv("POVD_LLM_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse POVD_LLM_TIMEOUT: %w", err)
		}
		cfg.LLMTimeout = dur
	}
	if value := strings.TrimSpace(os.Getenv("POVD_DEFAULT_QUOTA")); value != "" {
		quota, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse POVD_DEFAULT_QUOTA: %w", err)
		}
		cfg.DefaultQuota = quota
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaults.Addr
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		cfg.DatabasePath = defaults.DatabasePath
	}
	if strings.TrimSpace(cfg.Provider) == "" {
		cfg.Provider = defaults.Provider
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = defaults.MaxParallel
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = defaults.LLMTimeout
	}
	if cfg.DefaultQuota <= 0 {
		cfg.DefaultQuota = defaults.DefaultQuota
	}
	return cfg
}

// Validate reports configuration errors that would prevent startup.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "langchain", "local":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database path required")
	}
	if c.MaxParallel <= 0 {
		return fmt.Errorf("max parallel must be positive")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	return nil
}
