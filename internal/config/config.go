package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIKey                string        `mapstructure:"mailchimp_api_key" json:"-"`
	ListID                string        `mapstructure:"mailchimp_list_id"`
	BaseURL               string        `mapstructure:"mailchimp_base_url"`
	StatusMode            string        `mapstructure:"mailchimp_status_mode"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and configs/.env.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "mailchimp-subscriber")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("mailchimp_api_key", "")
	v.SetDefault("mailchimp_list_id", "")
	v.SetDefault("mailchimp_base_url", "")
	v.SetDefault("mailchimp_status_mode", "overwrite")
	v.SetDefault("request_timeout_seconds", 2)
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailchimp_api_key is required")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	cfg.StatusMode = strings.ToLower(strings.TrimSpace(cfg.StatusMode))
	switch cfg.StatusMode {
	case "overwrite", "if_new":
	default:
		return nil, fmt.Errorf("invalid mailchimp_status_mode %q (expected overwrite or if_new)", cfg.StatusMode)
	}

	return &cfg, nil
}
